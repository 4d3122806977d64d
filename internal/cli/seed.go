package cli

import (
	"fmt"
	"os"

	"driver_dashboard/internal/model"
	"driver_dashboard/internal/repository"
	"driver_dashboard/internal/service"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// seedFile is the fixture format accepted by the seed command.
type seedFile struct {
	Drivers []model.CreateDriverInput `yaml:"drivers"`
}

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed <fixtures.yaml>",
		Short: "Create drivers from a YAML fixture file",
		Long: `Create drivers from a YAML fixture file.

Every entry goes through the same validation as the API; the command stops at
the first invalid driver. Drivers created before that stay in place.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fixtures, err := loadSeedFile(args[0])
			if err != nil {
				return err
			}

			store, err := repository.Open(cmd.Context(), rootOpts.Config, rootOpts.Log)
			if err != nil {
				return fmt.Errorf("failed to open storage: %w", err)
			}
			defer store.Close()

			drivers := service.NewDriverService(store.Drivers, rootOpts.Log)
			for i, in := range fixtures.Drivers {
				d, err := drivers.CreateDriver(cmd.Context(), in)
				if err != nil {
					return fmt.Errorf("driver #%d (%s %s): %w", i+1, in.Vorname, in.Nachname, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created driver %d: %s %s\n", d.ID, d.Vorname, d.Nachname)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d drivers\n", len(fixtures.Drivers))
			return nil
		},
	}
}

func loadSeedFile(path string) (*seedFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixtures: %w", err)
	}
	fixtures := &seedFile{}
	if err := yaml.Unmarshal(raw, fixtures); err != nil {
		return nil, fmt.Errorf("failed to parse fixtures %s: %w", path, err)
	}
	return fixtures, nil
}
