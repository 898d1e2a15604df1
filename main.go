package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/joho/godotenv"

	"tabkit/app/command"
	"tabkit/domain/analysis"
	"tabkit/domain/core"
	"tabkit/domain/project"
	"tabkit/internal"
	"tabkit/internal/config"
	"tabkit/internal/container"
	"tabkit/internal/profile"
	"tabkit/ports"
)

var logger = internal.DefaultLogger

func main() {
	// Optional .env in the working directory.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("configuration: %v", err)
		os.Exit(1)
	}

	events := ports.EventSinkFunc(func(event any) {
		if ev, ok := event.(command.DatasetChangedEvent); ok {
			logger.Debug("dataset %q changed: %s", ev.DatasetName, ev.Operation)
		}
	})

	c, err := container.New(cfg, events)
	if err != nil {
		logger.Error("startup: %v", err)
		os.Exit(1)
	}
	defer c.Close()

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "import":
		err = cmdImport(c, os.Args[2:])
	case "analyze":
		err = cmdAnalyze(c, os.Args[2:])
	case "transform":
		err = cmdTransform(c, os.Args[2:])
	case "profile":
		err = cmdProfile(c, os.Args[2:])
	case "export":
		err = cmdExport(c, os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		logger.Error("%s: %v", os.Args[1], err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: tabkit <command> [flags]

commands:
  import     import a CSV/Excel file into a new project
  analyze    run an analysis over a dataset column pair
  transform  evaluate a column expression over a dataset
  profile    print summary statistics per numeric column
  export     export a dataset back to CSV/Excel`)
}

// cmdImport creates a project around an imported file
func cmdImport(c *container.Container, args []string) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	file := fs.String("file", "", "CSV or Excel file to import")
	out := fs.String("project", "", "project file to write")
	name := fs.String("name", "Untitled", "project name")
	fs.Parse(args)

	if *file == "" || *out == "" {
		return fmt.Errorf("-file and -project are required")
	}

	session := c.Session
	if err := session.NewProject(*name); err != nil {
		return err
	}

	imp := command.NewImportDatasetCommand(session.CurrentProject(), session.Events(), c.Reader, *file, "")
	if !session.Execute(imp) {
		return fmt.Errorf("import failed")
	}

	ds, err := session.CurrentProject().Dataset(imp.Item().ID)
	if err != nil {
		return err
	}
	logger.Info("imported %q: %d columns, %d rows", ds.Name, len(ds.ColumnNames()), ds.RowCount())

	profiles, err := profile.New().ProfileTable(context.Background(), ds.Data())
	if err != nil {
		return err
	}
	for name, p := range profiles {
		logger.Info("column %q: n=%d missing=%d mean=%.6g std=%.6g", name, p.Count, p.MissingCount, p.Mean, p.StdDev)
	}
	ds.SetMetadata("profiles", profiles)

	return session.SaveProject(*out)
}

// cmdAnalyze applies a numeric analysis and writes the result column back
func cmdAnalyze(c *container.Container, args []string) error {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	projectPath := fs.String("project", "", "project file")
	datasetName := fs.String("dataset", "", "dataset name")
	typ := fs.String("type", "", "analysis type (derivative, integral, arc_length, smoothing, interpolation)")
	method := fs.String("method", "", "analysis method (defaults per type)")
	xCol := fs.String("x", "", "x column")
	yCol := fs.String("y", "", "y column")
	outCol := fs.String("out", "", "result column name")
	window := fs.Int("window", 11, "smoothing window length")
	order := fs.Int("order", 3, "smoothing polynomial order")
	points := fs.Int("points", 0, "interpolation point count (0 = 2x input)")
	replace := fs.Bool("replace", false, "replace the result column if it exists")
	fs.Parse(args)

	if *projectPath == "" || *datasetName == "" || *typ == "" || *xCol == "" || *yCol == "" || *outCol == "" {
		return fmt.Errorf("-project, -dataset, -type, -x, -y and -out are required")
	}
	analysisType, err := analysis.ParseType(*typ)
	if err != nil {
		return err
	}

	session := c.Session
	if err := session.OpenProject(*projectPath); err != nil {
		return err
	}
	item, err := findDataset(session.CurrentProject(), *datasetName)
	if err != nil {
		return err
	}

	params := analysis.DefaultParameters()
	params.WindowLength = *window
	params.PolynomialOrder = *order
	params.NumPoints = *points

	cmd := command.NewApplyAnalysisCommand(session.CurrentProject(), session.Events(), c.Engine,
		item.ID, *xCol, *yCol, *outCol, analysisType, *method, params, *replace)
	if !session.Execute(cmd) {
		return fmt.Errorf("analysis failed")
	}

	result := cmd.Result()
	keys := make([]string, 0, len(result.Statistics))
	for k := range result.Statistics {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("%-24s %.6g\n", k, result.Statistics[k])
	}

	return session.SaveProject(*projectPath)
}

// cmdTransform evaluates a column expression and stores the result
func cmdTransform(c *container.Container, args []string) error {
	fs := flag.NewFlagSet("transform", flag.ExitOnError)
	projectPath := fs.String("project", "", "project file")
	datasetName := fs.String("dataset", "", "dataset name")
	expression := fs.String("expr", "", "expression over column names")
	outCol := fs.String("out", "", "result column name")
	replace := fs.Bool("replace", false, "replace the result column if it exists")
	fs.Parse(args)

	if *projectPath == "" || *datasetName == "" || *expression == "" || *outCol == "" {
		return fmt.Errorf("-project, -dataset, -expr and -out are required")
	}

	session := c.Session
	if err := session.OpenProject(*projectPath); err != nil {
		return err
	}
	item, err := findDataset(session.CurrentProject(), *datasetName)
	if err != nil {
		return err
	}

	cmd := command.NewApplyTransformCommand(session.CurrentProject(), session.Events(), c.Evaluator,
		item.ID, *outCol, *expression, *replace)
	if !session.Execute(cmd) {
		return fmt.Errorf("transform failed")
	}

	return session.SaveProject(*projectPath)
}

// cmdProfile prints per-column summary statistics
func cmdProfile(c *container.Container, args []string) error {
	fs := flag.NewFlagSet("profile", flag.ExitOnError)
	projectPath := fs.String("project", "", "project file")
	datasetName := fs.String("dataset", "", "dataset name")
	fs.Parse(args)

	if *projectPath == "" || *datasetName == "" {
		return fmt.Errorf("-project and -dataset are required")
	}

	session := c.Session
	if err := session.OpenProject(*projectPath); err != nil {
		return err
	}
	item, err := findDataset(session.CurrentProject(), *datasetName)
	if err != nil {
		return err
	}

	profiles, err := profile.New().ProfileTable(context.Background(), item.Dataset.Data())
	if err != nil {
		return err
	}

	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		p := profiles[name]
		fmt.Printf("%s: n=%d missing=%d mean=%.6g std=%.6g min=%.6g max=%.6g\n",
			p.Name, p.Count, p.MissingCount, p.Mean, p.StdDev, p.Min, p.Max)
	}
	return nil
}

// cmdExport writes a dataset back out as CSV or Excel
func cmdExport(c *container.Container, args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	projectPath := fs.String("project", "", "project file")
	datasetName := fs.String("dataset", "", "dataset name")
	out := fs.String("file", "", "output file (.csv or .xlsx)")
	fs.Parse(args)

	if *projectPath == "" || *datasetName == "" || *out == "" {
		return fmt.Errorf("-project, -dataset and -file are required")
	}

	session := c.Session
	if err := session.OpenProject(*projectPath); err != nil {
		return err
	}
	item, err := findDataset(session.CurrentProject(), *datasetName)
	if err != nil {
		return err
	}
	return c.Writer.Write(item.Dataset, *out)
}

func findDataset(p *project.Project, name string) (*project.Item, error) {
	for _, item := range p.Items() {
		if item.IsDataset() && item.Name == name {
			return item, nil
		}
	}
	return nil, core.NewNotFoundError("dataset", name)
}
