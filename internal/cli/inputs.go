package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/piwi3910/ReelCut/internal/demand"
	"github.com/piwi3910/ReelCut/internal/importer"
	"github.com/piwi3910/ReelCut/internal/model"
	"github.com/piwi3910/ReelCut/internal/project"
)

// inputFlags are the data and solver flags shared by solve, estimate and
// compare. Solver flags only override the config when set explicitly.
type inputFlags struct {
	ordersPath string
	stockPath  string
	specsPath  string
	machine    string
	jobPath    string

	unit          string
	workers       int
	timeLimit     int
	magnification int
	maxPerReel    int
}

func (f *inputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.ordersPath, "orders", "", "Orders file (.json, .csv, .xlsx)")
	cmd.Flags().StringVar(&f.stockPath, "stock", "", "Stock filler catalog (.json, .yaml)")
	cmd.Flags().StringVar(&f.specsPath, "specs", "", "Machine specs file (.json, .yaml)")
	cmd.Flags().StringVar(&f.machine, "machine", "", "Machine name to use from the specs")
	cmd.Flags().StringVar(&f.jobPath, "job", "", "Job file with orders, stock, machine and settings")
	cmd.Flags().StringVar(&f.unit, "unit", "", "Unit: inch or mm")
	cmd.Flags().IntVar(&f.workers, "workers", 0, "Parallel solver workers")
	cmd.Flags().IntVar(&f.timeLimit, "time-limit", 0, "Solver time limit in seconds")
	cmd.Flags().IntVar(&f.magnification, "magnification", 0, "Scale factor from real widths to integers")
	cmd.Flags().IntVar(&f.maxPerReel, "max-per-reel", 0, "Maximum slit reels per source reel")
}

// runInputs is everything one optimization run needs.
type runInputs struct {
	job      model.Job
	fromJob  bool
	settings model.Settings
}

// resolve merges the job file, config and flags. Precedence, highest
// first: flags, job file, config.
func (f *inputFlags) resolve(cmd *cobra.Command, a *app) (runInputs, error) {
	in := runInputs{job: model.NewJob()}
	in.job.Settings = a.cfg.Solver

	if f.jobPath != "" {
		job, err := project.LoadJob(f.jobPath)
		if err != nil {
			return runInputs{}, err
		}
		in.job = job
		in.fromJob = true
	}

	s := in.job.Settings
	flags := cmd.Flags()
	if flags.Changed("unit") {
		s.Unit = model.Unit(f.unit)
	}
	if flags.Changed("workers") {
		s.CPUWorkers = f.workers
	}
	if flags.Changed("time-limit") {
		s.MaxTimeSeconds = f.timeLimit
	}
	if flags.Changed("magnification") {
		s.Magnification = f.magnification
	}
	if flags.Changed("max-per-reel") {
		s.MaxPerReel = f.maxPerReel
	}
	if !s.Unit.Valid() {
		return runInputs{}, model.NewInvalidInput("unit", "unsupported unit %q", s.Unit)
	}
	in.settings = s
	in.job.Settings = s

	if err := f.loadOrders(a, &in); err != nil {
		return runInputs{}, err
	}
	if err := f.loadStock(a, &in); err != nil {
		return runInputs{}, err
	}
	if err := f.loadMachine(a, &in); err != nil {
		return runInputs{}, err
	}
	return in, nil
}

func (f *inputFlags) loadOrders(a *app, in *runInputs) error {
	if in.fromJob && f.ordersPath == "" {
		return nil
	}
	path := firstNonEmpty(f.ordersPath, a.cfg.Data.OrdersPath)
	if path == "" {
		return model.NewInvalidInput("orders", "no orders file given, use --orders or data.orders_path")
	}
	result := importer.ImportOrders(path)
	for _, w := range result.Warnings {
		a.logger.Warn("orders import", "path", path, "warning", w)
	}
	if err := result.Err(); err != nil {
		return err
	}
	in.job.Orders = result.Orders
	a.logger.Debug("orders loaded", "path", path, "lines", len(result.Orders))
	return nil
}

// loadStock reads the filler catalog. A missing default catalog falls
// back to the local inventory.
func (f *inputFlags) loadStock(a *app, in *runInputs) error {
	path := firstNonEmpty(f.stockPath, a.cfg.Data.StockPath)
	if in.fromJob && f.stockPath == "" {
		return nil
	}
	if !exists(path) {
		if f.stockPath != "" {
			return fmt.Errorf("stock catalog %s: %w", path, os.ErrNotExist)
		}
		inv, err := project.LoadInventory(project.DefaultInventoryPath())
		if err != nil {
			return fmt.Errorf("load inventory: %w", err)
		}
		in.job.Stock = inv.StockWidths(in.settings.Unit)
		a.logger.Debug("stock from inventory", "widths", len(in.job.Stock))
		return nil
	}
	widths, err := importer.LoadStock(path, in.settings.Unit)
	if err != nil {
		return err
	}
	in.job.Stock = widths
	return nil
}

// loadMachine picks the machine spec by name, or the first one for the
// run's unit. A missing default specs file falls back to the inventory.
func (f *inputFlags) loadMachine(a *app, in *runInputs) error {
	name := firstNonEmpty(f.machine, a.cfg.Data.Machine)
	if in.fromJob && f.specsPath == "" && name == "" && in.job.Machine.UB > 0 {
		return nil
	}

	path := firstNonEmpty(f.specsPath, a.cfg.Data.MachineSpecsPath)
	var specs []model.MachineSpec
	if exists(path) {
		loaded, err := importer.LoadMachineSpecs(path)
		if err != nil {
			return err
		}
		specs = loaded
	} else {
		if f.specsPath != "" {
			return fmt.Errorf("machine specs %s: %w", path, os.ErrNotExist)
		}
		inv, err := project.LoadInventory(project.DefaultInventoryPath())
		if err != nil {
			return fmt.Errorf("load inventory: %w", err)
		}
		specs = inv.Machines
	}

	if name != "" {
		for _, s := range specs {
			if s.Name == name {
				in.job.Machine = s
				return nil
			}
		}
		return model.NewInvalidInput("machine", "no machine spec named %q", name)
	}
	spec, err := demand.SelectMachine(specs, in.settings.Unit)
	if err != nil {
		return err
	}
	in.job.Machine = spec
	return nil
}

func exists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return !errors.Is(err, os.ErrNotExist)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
