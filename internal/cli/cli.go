package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dricquery/mcping"

	"github.com/dricquery/mcping/internal/web"
)

type App struct {
	settings     Settings
	statusServer *web.StatusServer
}

func NewApp() *App {
	settings, err := loadSettings()
	if err != nil {
		settings = defaultSettings()
	}
	return &App{settings: settings}
}

func (a *App) Run() error {
	defer func() {
		_ = a.statusServer.Close()
	}()

	for {
		action, err := a.askAction()
		if err != nil {
			if errors.Is(err, errAborted) {
				return nil
			}
			return err
		}

		switch action {
		case actionSettings:
			if err := a.manageSettings(); err != nil {
				if errors.Is(err, errAborted) {
					continue
				}
				return err
			}
		case actionExit:
			return nil
		default:
			config, err := a.collectConfig()
			if err != nil {
				if errors.Is(err, errAborted) {
					continue
				}
				return err
			}
			if err := a.execute(config); err != nil {
				if errors.Is(err, errAborted) {
					continue
				}
				return err
			}
		}
	}
}

type appAction int

const (
	actionQuery appAction = iota
	actionSettings
	actionExit
)

func (a *App) askAction() (appAction, error) {
	index, err := selectOption("Main menu", []string{"New query", "Settings", "Exit"})
	if err != nil {
		return actionExit, err
	}
	switch index {
	case 0:
		return actionQuery, nil
	case 1:
		return actionSettings, nil
	default:
		return actionExit, nil
	}
}

// Protocol selects which Minecraft edition's wire protocol to speak,
// independent of the Bedrock sub-editions reported in mcping.Edition.
type Protocol string

const (
	ProtocolBedrock Protocol = "bedrock"
	ProtocolJava    Protocol = "java"
)

type DirectConfig struct {
	Host     string
	Port     int
	Protocol Protocol
}

func (a *App) collectConfig() (DirectConfig, error) {
	protocol, err := a.askProtocol()
	if err != nil {
		return DirectConfig{}, err
	}

	host, err := a.askHost()
	if err != nil {
		return DirectConfig{}, err
	}

	port, err := a.askPort(protocol)
	if err != nil {
		return DirectConfig{}, err
	}

	return DirectConfig{Host: host, Port: port, Protocol: protocol}, nil
}

func (a *App) askProtocol() (Protocol, error) {
	index, err := selectOption("Edition", []string{"Bedrock", "Java"})
	if err != nil {
		return "", err
	}
	if index == 1 {
		return ProtocolJava, nil
	}
	return ProtocolBedrock, nil
}

func (a *App) askHost() (string, error) {
	var errMsg string
	for {
		value, err := promptInput("Server host", "e.g. play.example.com", errMsg)
		if err != nil {
			return "", err
		}
		if strings.TrimSpace(value) == "" {
			errMsg = "Host cannot be empty"
			continue
		}
		return value, nil
	}
}

func (a *App) askPort(protocol Protocol) (int, error) {
	defaultPort := mcping.DefaultBedrockPort
	if protocol == ProtocolJava {
		defaultPort = mcping.DefaultJavaPort
	}
	var errMsg string
	for {
		value, err := promptInput(fmt.Sprintf("Port (%d)", defaultPort), "Leave empty for the default port", errMsg)
		if err != nil {
			return 0, err
		}
		if strings.TrimSpace(value) == "" {
			return defaultPort, nil
		}
		port, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || port <= 0 || port > 65535 {
			errMsg = "Port must be a number between 1 and 65535"
			continue
		}
		return port, nil
	}
}

func (a *App) execute(config DirectConfig) error {
	ctx, cancel := context.WithTimeout(context.Background(), a.settings.RequestTimeout())
	defer cancel()

	address := config.Host
	if config.Port > 0 {
		address = fmt.Sprintf("%s:%d", config.Host, config.Port)
	}

	var latency int64
	var result any

	resultText, err := withSpinner("Query", "Querying server", 120*time.Millisecond, func() (string, error) {
		var queryErr error
		switch config.Protocol {
		case ProtocolJava:
			var javaResp mcping.JavaResponse
			latency, javaResp, queryErr = mcping.PingJava(ctx, mcping.JavaConfig{
				ServerAddress: address,
				Timeout:       a.settings.RequestTimeout(),
				DisableSRV:    !a.settings.EnableSRV,
			})
			result = javaResp
		default:
			var bedrockResp mcping.BedrockResponse
			latency, bedrockResp, queryErr = mcping.PingBedrock(ctx, mcping.BedrockConfig{
				ServerAddress:    address,
				Timeout:          a.settings.RequestTimeout(),
				Tries:            uint(a.settings.BedrockTries),
				WaitBetweenTries: a.settings.BedrockWait(),
			})
			result = bedrockResp
		}
		if queryErr != nil {
			return "", queryErr
		}
		return formatDirectResult(latency, result, a.settings.Verbose), nil
	})
	if err != nil {
		return err
	}

	renderTextPage("Result", resultText)

	if a.settings.SaveResults {
		if err := a.saveResult(fmt.Sprintf("%s query: %s", config.Protocol, address), resultText); err != nil {
			fmt.Printf("warning: failed to save result: %v\n", err)
		}
	}

	serve, err := a.askServeJSON()
	if err != nil {
		return err
	}
	if serve {
		_ = a.statusServer.Close()
		server, err := web.StartStatusServer(web.StatusPayload{
			Protocol:      string(config.Protocol),
			ServerAddress: address,
			LatencyMillis: latency,
			Result:        result,
		}, 15*time.Minute)
		if err != nil {
			return err
		}
		a.statusServer = server
		renderTextPage("Result", resultText+"\n\nJSON: "+server.URL)
	}

	return nil
}

func (a *App) askServeJSON() (bool, error) {
	index, err := selectOption("Expose as JSON?", []string{"No", "Yes, on a local port"})
	if err != nil {
		return false, err
	}
	return index == 1, nil
}
