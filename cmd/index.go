package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/orderdesk/orderdesk/internal/artifacts"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Rebuild the procedure search index",
	Long:  `Chunks the support procedure document, fits the term vectorizer, and writes a fresh versioned search bundle to the data directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		var bar *progressbar.ProgressBar
		bundle, err := artifacts.Build(cfg.SOPPath, artifacts.BuildOptions{
			Progress: func(done, total int) {
				if bar == nil {
					bar = progressbar.NewOptions(total,
						progressbar.OptionSetDescription("Indexing chunks"),
						progressbar.OptionSetWidth(40),
						progressbar.OptionShowCount(),
						progressbar.OptionClearOnFinish(),
					)
				}
				_ = bar.Set(done)
			},
		})
		if err != nil {
			return fmt.Errorf("building index from %s: %w", cfg.SOPPath, err)
		}
		if bar != nil {
			_ = bar.Finish()
		}

		dir := filepath.Join(cfg.DataDir, "index")
		st := artifacts.NewStore(dir)
		if err := st.Save(bundle); err != nil {
			return fmt.Errorf("saving index to %s: %w", dir, err)
		}

		fmt.Printf("Indexed %d chunks from %s (vocabulary: %d terms)\n",
			len(bundle.Chunks), cfg.SOPPath, bundle.Vectorizer.Dimension())
		fmt.Printf("Bundle written to %s\n", dir)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(indexCmd)
}
