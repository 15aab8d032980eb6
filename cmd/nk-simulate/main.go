package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/R-Oraby/Macro-Models/internal/config"
	"github.com/R-Oraby/Macro-Models/internal/dataset"
	"github.com/R-Oraby/Macro-Models/internal/simulation"
	"github.com/R-Oraby/Macro-Models/pkg/constants"
	"github.com/R-Oraby/Macro-Models/pkg/output"
	"github.com/R-Oraby/Macro-Models/pkg/validation"
	"go.uber.org/zap"
)

func main() {
	// Process command line flags first to get config location
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file (empty for defaults)")
	envFile := flag.String("env-file", ".env", "optional file of NKM_* overrides")
	dataLocation := flag.String("data", "", "path to the observed dataset CSV, overrides data.path")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv, json, yaml")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	seed := flag.String("seed", "", "shock seed override")
	solverMethod := flag.String("solver", "", "solver override: newton, linear")
	noShocks := flag.Bool("no-shocks", false, "run with all shocks set to zero")
	flag.Parse()

	if err := config.LoadEnvFile(*envFile); err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load env file\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}

	// Load the config file to get logging configuration
	conf, err := config.LoadConfiguration(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		os.Exit(1)
	}

	// Initialize logging based on config and CLI override
	logger, err := config.NewLogger(conf.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	// Determine output format (CLI override takes precedence over config)
	outputFormat := conf.Output.Format
	if *outputFormatFlag != "" {
		outputFormat = *outputFormatFlag
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}
	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		logger.Fatal(err.Error(),
			zap.String("op", "main"),
		)
	}

	if err := applyOverrides(conf, *dataLocation, *seed, *solverMethod, *noShocks); err != nil {
		logger.Fatal("invalid command line override",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	// Validate configuration and display any warnings
	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	if conf.Data.Path == "" {
		logger.Fatal("no dataset configured; set data.path or pass -data",
			zap.String("op", "main"),
		)
	}
	data, err := dataset.LoadCSV(conf.Data.Path)
	if err != nil {
		logger.Fatal("failed to load dataset",
			zap.String("op", "main"),
			zap.String("path", conf.Data.Path),
			zap.Error(err),
		)
	}

	result, err := simulation.Simulate(logger, *conf, data)
	if err != nil {
		logger.Fatal("failed to run simulation",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	if err := output.Write(os.Stdout, outputFormat, result); err != nil {
		logger.Fatal("failed to write results",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
}
