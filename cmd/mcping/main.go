// Command mcping queries the status of a Minecraft Java or Bedrock
// server and prints the result, either interactively or as a single
// one-shot query driven by flags.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	flags "github.com/jessevdk/go-flags"

	"github.com/dricquery/mcping"
	"github.com/dricquery/mcping/internal/cli"
)

type options struct {
	Java struct {
		Args struct {
			Address string `positional-arg-name:"address" required:"true"`
		} `positional-args:"true"`
		Timeout time.Duration `long:"timeout" default:"5s" description:"dial and exchange timeout"`
		JSON    bool          `long:"json" description:"print the latency and decoded response as JSON instead of a formatted summary"`
	} `command:"java" description:"ping a Java Edition server"`

	Bedrock struct {
		Args struct {
			Address string `positional-arg-name:"address" required:"true"`
		} `positional-args:"true"`
		Timeout time.Duration `long:"timeout" default:"5s" description:"socket deadline covering all attempts and the reply"`
		Tries   uint          `long:"tries" default:"4" description:"number of Unconnected Ping attempts before giving up"`
		Wait    time.Duration `long:"wait" default:"500ms" description:"delay between attempts"`
		JSON    bool          `long:"json" description:"print the latency and decoded response as JSON instead of a formatted summary"`
	} `command:"bedrock" description:"ping a Bedrock Edition server"`

	Interactive struct {
	} `command:"interactive" description:"run the interactive terminal UI"`
}

func main() {
	var opts options
	parser := flags.NewParser(&opts, flags.Default)
	parser.SubcommandsOptional = true

	if _, err := parser.Parse(); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	var commandName string
	if parser.Active != nil {
		commandName = parser.Active.Name
	}

	switch commandName {
	case "java":
		runJava(opts)
	case "bedrock":
		runBedrock(opts)
	default:
		if err := cli.NewApp().Run(); err != nil {
			fmt.Fprintln(os.Stderr, color.RedString("error: %v", err))
			os.Exit(1)
		}
	}
}

func runJava(opts options) {
	ctx, cancel := context.WithTimeout(context.Background(), opts.Java.Timeout)
	defer cancel()

	latency, resp, err := mcping.PingJava(ctx, mcping.JavaConfig{
		ServerAddress: opts.Java.Args.Address,
		Timeout:       opts.Java.Timeout,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error: %v", err))
		os.Exit(1)
	}

	if opts.Java.JSON {
		printJSON(latency, resp)
		return
	}
	fmt.Println(color.CyanString("Java Edition"))
	fmt.Println(resp.String())
	fmt.Printf("Latency: %dms\n", latency)
}

func runBedrock(opts options) {
	ctx, cancel := context.WithTimeout(context.Background(), opts.Bedrock.Timeout*time.Duration(opts.Bedrock.Tries)+time.Second)
	defer cancel()

	latency, resp, err := mcping.PingBedrock(ctx, mcping.BedrockConfig{
		ServerAddress:    opts.Bedrock.Args.Address,
		Timeout:          opts.Bedrock.Timeout,
		Tries:            opts.Bedrock.Tries,
		WaitBetweenTries: opts.Bedrock.Wait,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error: %v", err))
		os.Exit(1)
	}

	if opts.Bedrock.JSON {
		printJSON(latency, resp)
		return
	}
	fmt.Println(color.CyanString("Bedrock Edition"))
	fmt.Println(resp.String())
	fmt.Printf("Latency: %dms\n", latency)
}

func printJSON(latency int64, resp any) {
	out := struct {
		LatencyMillis int64 `json:"latency_millis"`
		Result        any   `json:"result"`
	}{LatencyMillis: latency, Result: resp}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(out)
}
