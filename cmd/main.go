package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/dzfranklin/ekidata2sql"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

func usageAndDie() {
	fmt.Println("Example usage:\n" +
		"    ekidata2sql --dbname ekidata --datadir ./data\n" +
		"    ekidata2sql --driver sqlite --datadir ./data --out ekidata.db\n" +
		"    ekidata2sql --export <ekidata.db> --out <csv dir>")
	os.Exit(1)
}

func main() {
	_ = godotenv.Load()

	configPath := pflag.String("config", "", "YAML config file")
	dbName := pflag.StringP("dbname", "n", "", "Database name (default ekidata)")
	dataDir := pflag.StringP("datadir", "d", "", "Directory of ekidata.jp CSV files (default .)")
	driver := pflag.String("driver", "", "Destination: mysql or sqlite (default mysql)")
	output := pflag.StringP("out", "o", "", "SQLite file to write, or directory to export to")
	encoding := pflag.String("encoding", "", "CSV encoding: utf-8 or shift_jis (default utf-8)")
	clipFeature := pflag.String("clip-feature", "", "Only import stations inside the GeoJSON feature in the file specified")
	exportPath := pflag.StringP("export", "e", "", "Export a SQLite database to CSV files")
	noProgress := pflag.Bool("no-progress", false, "Don't draw progress bars")
	verbose := pflag.BoolP("verbose", "v", false, "Log debug messages")

	pflag.Parse()

	if pflag.NArg() > 0 {
		usageAndDie()
	}

	if *verbose {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	if *exportPath != "" {
		if *output == "" {
			usageAndDie()
		}
		if err := ekidata2sql.Export(*exportPath, *output); err != nil {
			fmt.Printf("Error: %s\n", err)
			os.Exit(1)
		}
		fmt.Println("All done")
		return
	}

	cfg := ekidata2sql.DefaultConfig()
	if *configPath != "" {
		if err := ekidata2sql.LoadConfigFile(*configPath, &cfg); err != nil {
			fmt.Printf("Error: %s\n", err)
			os.Exit(1)
		}
	}
	cfg.ApplyEnv(os.LookupEnv)
	overrideIfSet(&cfg.DBName, *dbName)
	overrideIfSet(&cfg.DataDir, *dataDir)
	overrideIfSet(&cfg.Driver, *driver)
	overrideIfSet(&cfg.Out, *output)
	overrideIfSet(&cfg.ClipFeature, *clipFeature)
	if *encoding != "" {
		cfg.Encoding = ekidata2sql.Encoding(*encoding)
	}

	opts := &ekidata2sql.ImportOpts{}
	if !*noProgress {
		opts.Progress = ekidata2sql.NewProgress(os.Stderr)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	_, err := ekidata2sql.Import(ctx, cfg, opts)

	var missing *ekidata2sql.MissingInputsError
	if errors.As(err, &missing) {
		fmt.Println("data file doesn't exist!")
		for _, category := range ekidata2sql.Categories {
			path := missing.Found[category]
			if path == "" {
				path = "(missing)"
			}
			fmt.Printf("%s: %s\n", category, path)
		}
		os.Exit(1)
	} else if err != nil {
		fmt.Printf("Error: %s\n", err)
		os.Exit(1)
	} else {
		fmt.Println("All done")
	}
}

func overrideIfSet(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}
