package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/prasetyowira/qrstudio/config"
	"github.com/prasetyowira/qrstudio/constant"
	"github.com/prasetyowira/qrstudio/domain/studio"
	"github.com/prasetyowira/qrstudio/infrastructure/db"
	appLogger "github.com/prasetyowira/qrstudio/infrastructure/logger"
	"github.com/prasetyowira/qrstudio/infrastructure/qrcode"
	"github.com/spf13/cobra"
)

type generateFlags struct {
	size       string
	foreground string
	background string
	level      string
	outDir     string
	session    string
}

func newGenerateCmd() *cobra.Command {
	flags := generateFlags{}
	defaults := studio.DefaultForm()

	cmd := &cobra.Command{
		Use:   "generate [text]",
		Short: "Write a QR code PNG for text, or for the last text entered",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig()
			appLogger.Initialize(cfg.IsProduction())
			defer appLogger.Close()

			repository, err := db.NewPreferenceRepository(cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("open preferences: %w", err)
			}
			defer repository.Close()

			ctrl := studio.NewController(qrcode.NewGenerator(), repository, flags.session, cfg.StorageKey)
			ctrl.Restore(cmd.Context())

			path, err := generateImage(cmd.Context(), ctrl, args, flags)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}

	cmd.Flags().StringVar(&flags.size, "size", defaults.Size, "Image size in pixels (100-1200)")
	cmd.Flags().StringVar(&flags.foreground, "fg", defaults.Foreground, "Foreground color")
	cmd.Flags().StringVar(&flags.background, "bg", defaults.Background, "Background color")
	cmd.Flags().StringVar(&flags.level, "ec", defaults.Level, "Error correction level (L, M, Q, H)")
	cmd.Flags().StringVarP(&flags.outDir, "out", "o", ".", "Output directory")
	cmd.Flags().StringVar(&flags.session, "session", constant.CLISessionID, "Preference scope for the remembered text")

	return cmd
}

// generateImage drives ctrl through an edit, a generation and a download, and
// writes the PNG into flags.outDir. It returns the written path.
func generateImage(ctx context.Context, ctrl *studio.Controller, args []string, flags generateFlags) (string, error) {
	if len(args) == 1 {
		ctrl.SetText(ctx, args[0])
	}

	form := ctrl.State().Form
	form.Size = flags.size
	form.Foreground = flags.foreground
	form.Background = flags.background
	form.Level = flags.level
	ctrl.UpdateForm(ctx, form)

	task, err := ctrl.Generate(ctx)
	if err != nil {
		return "", err
	}
	if _, err := task.Wait(ctx); err != nil {
		return "", err
	}

	download, err := ctrl.Download(ctx)
	if err != nil {
		return "", err
	}

	path := filepath.Join(flags.outDir, download.Filename)
	if err := os.WriteFile(path, download.Data, 0o644); err != nil {
		appLogger.CtxError(ctx, "Failed to write image", appLogger.LoggerInfo{
			ContextFunction: constant.CtxGenerateCLI,
			Error: &appLogger.CustomError{
				Code:    constant.ErrCodeAppWriteFile,
				Message: err.Error(),
				Type:    constant.ErrTypeApp,
			},
			Data: map[string]interface{}{
				constant.DataOutput: path,
			},
		})
		return "", err
	}

	appLogger.CtxInfo(ctx, constant.MsgImageSaved, appLogger.LoggerInfo{
		ContextFunction: constant.CtxGenerateCLI,
		Data: map[string]interface{}{
			constant.DataOutput: path,
			constant.DataBytes:  len(download.Data),
		},
	})
	return path, nil
}
