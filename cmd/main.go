package main

import (
	"context"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"studentrecords/internal/config"
	"studentrecords/internal/logger"
	"studentrecords/internal/service"
	"studentrecords/internal/storage"
)

// env is what every command shares once the store is open.
type env struct {
	cfg      config.Config
	log      *logger.ZerologAdapter
	backend  storage.Backend
	students *service.StudentService
}

func newRootCmd() *cobra.Command {
	e := &env{}
	var backend, path, format string

	root := &cobra.Command{
		Use:   "studentrecords",
		Short: "Manage student records",
		Long: `studentrecords keeps a list of students (name, roll number, grade)
and saves the whole list to local storage after every change.

Run without arguments to open the desktop window.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			e.cfg = config.Load()
			if cmd.Flags().Changed("storage") {
				e.cfg.StorageBackend = backend
			}
			if cmd.Flags().Changed("path") {
				e.cfg.StoragePath = path
			}
			if cmd.Flags().Changed("format") {
				e.cfg.StorageFormat = format
			}
			e.log = logger.New(e.cfg.LogLevel, e.cfg.LogFormat)

			b, err := storage.Open(e.cfg)
			if err != nil {
				return errors.Wrap(err, "failed to open storage")
			}
			e.backend = b
			e.students = service.NewStudentService(cmd.Context(), b, e.log)
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if e.backend != nil {
				return e.backend.Close()
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGUI(e)
		},
	}

	root.PersistentFlags().StringVar(&backend, "storage", config.BackendFile, "storage backend: file, sqlite, postgres, bolt")
	root.PersistentFlags().StringVar(&path, "path", "students.dat", "storage file path")
	root.PersistentFlags().StringVar(&format, "format", "gob", "file storage format: gob, json, csv, yaml")

	root.AddCommand(
		newGUICmd(e),
		newServeCmd(e),
		newAddCmd(e),
		newRemoveCmd(e),
		newSearchCmd(e),
		newListCmd(e),
		newImportCmd(e),
	)
	return root
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
