package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"fyne.io/fyne/v2/app"
	"github.com/gorilla/handlers"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"studentrecords/internal/gui"
	"studentrecords/internal/handler"
	"studentrecords/internal/model"
	"studentrecords/internal/service"
)

func newGUICmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "gui",
		Short: "Open the desktop window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGUI(e)
		},
	}
}

func runGUI(e *env) error {
	shell := gui.NewShell(app.NewWithID(gui.AppID), e.students, e.log)
	shell.ReportLoadError(e.students.LoadErr())
	shell.ShowAndRun()
	return nil
}

func newServeCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the student API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			imports := service.NewImportService(e.students, e.log)
			uploads := handler.NewUploadHandler(imports, e.cfg.UploadDir, e.log)
			router := handler.NewRouter(
				handler.NewStudentHandler(e.students),
				uploads,
				handler.NewProgressHandler(imports, e.log),
			)

			srv := &http.Server{
				Addr:    e.cfg.HTTPAddr,
				Handler: handlers.CORS(handlers.AllowedOrigins([]string{e.cfg.CORSOrigin}))(router),
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				e.log.Info("Server", "server running", map[string]interface{}{"addr": srv.Addr})
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return err
				}
			case <-ctx.Done():
				e.log.Info("Server", "shutting down", nil)
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := srv.Shutdown(shutdownCtx); err != nil {
					return err
				}
			}
			uploads.Wait()
			return nil
		},
	}
}

func newAddCmd(e *env) *cobra.Command {
	var student model.Student

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a student",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := student.Validate(); err != nil {
				return errors.New(model.MsgFieldsRequired)
			}
			if err := e.students.Add(cmd.Context(), student); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), model.MsgAdded)
			return nil
		},
	}
	cmd.Flags().StringVar(&student.Name, "name", "", "student name")
	cmd.Flags().StringVar(&student.RollNumber, "roll", "", "roll number")
	cmd.Flags().StringVar(&student.Grade, "grade", "", "grade")
	return cmd
}

func newRemoveCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <roll-number>",
		Short: "Remove every student with a roll number",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := e.students.Remove(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), model.MsgRemoved)
			return nil
		},
	}
}

func newSearchCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "search <roll-number>",
		Short: "Show the first student with a roll number",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			student, ok := e.students.Search(args[0])
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), model.MsgNotFound)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), student.String())
			return nil
		},
	}
}

func newListCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all students in insertion order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprint(cmd.OutOrStdout(), model.FormatList(e.students.List()))
			return nil
		},
	}
}

func newImportCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Add every student from a CSV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			imports := service.NewImportService(e.students, e.log)
			if err := imports.ProcessCSV(cmd.Context(), args[0]); err != nil {
				return err
			}
			progress := imports.GetFileProgress(filepath.Base(args[0]))
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d records (%d skipped).\n",
				progress.TotalRecords-progress.Skipped, progress.Skipped)
			return nil
		},
	}
}
