package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const (
	Version = "0.3.0"
	appName = "scriptorium"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Critical edition layout",
		Long: `Scriptorium compiles a critical edition into box/glue/penalty primitives,
breaks and paginates the main text, and typesets the critical apparatus and
margin notes for every page into a PDF proof.`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "scriptorium.yaml", "配置文件路径 (YAML)")

	cmd.AddCommand(layoutCmd(&configPath), watchCmd(&configPath))
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", appName, Version)
		},
	})
	return cmd
}

func layoutCmd(configPath *string) *cobra.Command {
	var output, debug string
	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Lay out the edition once and write the PDF proof",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath, output, debug)
			if err != nil {
				return err
			}
			logger := cfg.Log.NewLogger(os.Stderr)
			b := newBuilder(cfg, logger)
			res, err := b.run(reloadAll)
			if err != nil {
				return fmt.Errorf("生成 PDF 失败: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "已生成 PDF：%s（%d 页，%d 条诊断）\n", res.pdfPath, res.pages, len(res.diagnostics))
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "out", "o", "", "PDF 输出路径（覆盖配置）")
	cmd.Flags().StringVar(&debug, "debug", "", "布局调试 JSON 输出路径（覆盖配置）")
	return cmd
}
