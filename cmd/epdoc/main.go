// Command epdoc converts, validates and evaluates EnergyPlus input
// files.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/buildsim/epdoc"
	"github.com/buildsim/epdoc/epjson"
	"github.com/buildsim/epdoc/fsio"
	"github.com/buildsim/epdoc/idf"
	"github.com/buildsim/epdoc/schedule"
)

var (
	cfg     config
	log     zerolog.Logger
	verbose bool
)

func main() {
	root := &cobra.Command{
		Use:           "epdoc",
		Short:         "EnergyPlus input file toolkit",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = loadConfig()
			if err != nil {
				return err
			}
			level := zerolog.WarnLevel
			if verbose {
				level = zerolog.DebugLevel
			}
			log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
				With().Timestamp().Logger().Level(level)
			return nil
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	root.AddCommand(convertCmd(), validateCmd(), evalCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "epdoc:", err)
		os.Exit(1)
	}
}

// load parses an input file as IDF or epJSON by extension.
func load(path string) (*epdoc.Document, error) {
	data, err := fsio.Disk{}.ReadBytes(path)
	if err != nil {
		return nil, err
	}
	doc, err := parseByExt(path, data)
	if err != nil {
		return nil, err
	}
	doc.Path = path
	return doc, nil
}

func parseByExt(path string, data []byte) (*epdoc.Document, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".epjson", ".json":
		return epjson.Parse(data, epjson.Option{SchemaLocations: cfg.SchemaDirs, Logger: &log})
	default:
		return idf.Parse(data, idf.Option{SchemaLocations: cfg.SchemaDirs, Logger: &log})
	}
}

func convertCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "convert <in> <out>",
		Short: "Convert between IDF and epJSON",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := load(args[0])
			if err != nil {
				return err
			}
			out := args[1]
			switch strings.ToLower(filepath.Ext(out)) {
			case ".epjson", ".json":
				return epjson.WriteTo(doc, out, fsio.Disk{})
			default:
				return idf.WriteTo(doc, out, fsio.Disk{})
			}
		},
	}
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Parse a file and report validation issues",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := load(args[0])
			if err != nil {
				return err
			}
			iss := doc.Check()
			for _, it := range iss {
				fmt.Printf("%s: %s: %s\n", it.Code, it.Path, it.Message)
			}
			if len(iss) > 0 {
				return fmt.Errorf("%d issue(s)", len(iss))
			}
			fmt.Println("ok")
			return nil
		},
	}
}

func evalCmd() *cobra.Command {
	var (
		year  int
		steps int
		sum   bool
	)
	cmd := &cobra.Command{
		Use:   "eval <file> <schedule-name>",
		Short: "Evaluate a schedule across a year",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := load(args[0])
			if err != nil {
				return err
			}
			obj, ok := findSchedule(doc, args[1])
			if !ok {
				return fmt.Errorf("no schedule named %q", args[1])
			}
			values, err := schedule.Values(obj, year, schedule.Options{
				StepsPerHour: steps,
				BasePath:     filepath.Dir(args[0]),
				Logger:       &log,
			})
			if err != nil {
				return err
			}
			if sum {
				var total float64
				for _, v := range values {
					total += v
				}
				fmt.Printf("%d values, sum %g\n", len(values), total)
				return nil
			}
			for _, v := range values {
				fmt.Println(v)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&year, "year", time.Now().Year(), "calendar year to evaluate in")
	cmd.Flags().IntVar(&steps, "steps", 1, "steps per hour (1, 2, 4, 6, 12, 60)")
	cmd.Flags().BoolVar(&sum, "sum", false, "print the count and sum only")
	return cmd
}

var scheduleTypes = []string{
	"Schedule:Constant", "Schedule:Compact", "Schedule:Year", "Schedule:File",
	"Schedule:Day:Hourly", "Schedule:Day:Interval", "Schedule:Day:List",
	"Schedule:Week:Daily", "Schedule:Week:Compact",
}

func findSchedule(doc *epdoc.Document, name string) (*epdoc.Object, bool) {
	for _, typ := range scheduleTypes {
		if obj, ok := doc.Collection(typ).Get(name); ok {
			return obj, true
		}
	}
	return nil, false
}
