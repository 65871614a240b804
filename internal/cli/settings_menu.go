package cli

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

func (a *App) manageSettings() error {
	for {
		index, err := selectOption("Settings", []string{"View settings", "Edit settings", "Reset settings", "Back"})
		if err != nil {
			return err
		}
		switch index {
		case 0:
			if err := a.viewSettings(); err != nil {
				return err
			}
		case 1:
			if err := a.editSettings(); err != nil {
				return err
			}
		case 2:
			a.settings = defaultSettings()
			if err := saveSettings(a.settings); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

func (a *App) viewSettings() error {
	renderTextPage("Settings", formatSettings(a.settings))
	return waitForEnter()
}

func (a *App) editSettings() error {
	for {
		options := []string{
			"Request timeout (seconds)",
			"Enable Java SRV",
			"Bedrock tries",
			"Bedrock wait between tries (ms)",
			"Verbose output",
			"Save results",
			"Results path",
			"Back",
		}
		index, err := selectOption("Edit settings", options)
		if err != nil {
			return err
		}
		switch index {
		case 0:
			value, err := askIntValue("Request timeout (seconds)", a.settings.RequestTimeoutSeconds)
			if err != nil {
				return err
			}
			a.settings.RequestTimeoutSeconds = value
		case 1:
			value, err := askBoolValue("Enable Java SRV", a.settings.EnableSRV)
			if err != nil {
				return err
			}
			a.settings.EnableSRV = value
		case 2:
			value, err := askIntValue("Bedrock tries", a.settings.BedrockTries)
			if err != nil {
				return err
			}
			a.settings.BedrockTries = value
		case 3:
			value, err := askIntValue("Bedrock wait between tries (ms)", a.settings.BedrockWaitMillis)
			if err != nil {
				return err
			}
			a.settings.BedrockWaitMillis = value
		case 4:
			value, err := askBoolValue("Verbose output", a.settings.Verbose)
			if err != nil {
				return err
			}
			a.settings.Verbose = value
		case 5:
			value, err := askBoolValue("Save results", a.settings.SaveResults)
			if err != nil {
				return err
			}
			a.settings.SaveResults = value
		case 6:
			value, err := askTextValue("Results path", a.settings.ResultsPath)
			if err != nil {
				return err
			}
			if strings.TrimSpace(value) == "" {
				value = defaultResultsPath()
			}
			a.settings.ResultsPath = value
		default:
			return nil
		}
		if err := a.settings.Validate(); err != nil {
			return err
		}
		if err := saveSettings(a.settings); err != nil {
			return err
		}
	}
}

func formatSettings(settings Settings) string {
	path, _ := settingsPath()
	lines := []string{
		fmt.Sprintf("Config file: %s", path),
		"",
		fmt.Sprintf("Request timeout: %d seconds", settings.RequestTimeoutSeconds),
		fmt.Sprintf("Enable Java SRV: %t", settings.EnableSRV),
		fmt.Sprintf("Bedrock tries: %d", settings.BedrockTries),
		fmt.Sprintf("Bedrock wait between tries: %d ms", settings.BedrockWaitMillis),
		fmt.Sprintf("Verbose output: %t", settings.Verbose),
		fmt.Sprintf("Save results: %t", settings.SaveResults),
		fmt.Sprintf("Results path: %s", settings.ResultsPath),
	}
	return strings.Join(lines, "\n")
}

func askIntValue(label string, current int) (int, error) {
	for {
		value, err := promptInput(label, fmt.Sprintf("Current: %d", current), "")
		if err != nil {
			return 0, err
		}
		value = strings.TrimSpace(value)
		if value == "" {
			return current, nil
		}
		parsed, err := strconv.Atoi(value)
		if err != nil {
			continue
		}
		return parsed, nil
	}
}

func askTextValue(label, current string) (string, error) {
	value, err := promptInput(label, fmt.Sprintf("Current: %s", current), "")
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(value) == "" {
		return current, nil
	}
	return value, nil
}

func askBoolValue(label string, current bool) (bool, error) {
	_ = current
	options := []string{"Disabled", "Enabled"}
	index, err := selectOption(label, options)
	if err != nil {
		return false, err
	}
	return index == 1, nil
}

func waitForEnter() error {
	fmt.Println()
	fmt.Print(style("Press Enter to return", colorDim))
	reader := bufio.NewReader(os.Stdin)
	_, err := reader.ReadString('\n')
	return err
}
