package app

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/catalogbridge/internal/cmd/output"
	"github.com/agentstation/catalogbridge/pkg/reconcile"
)

// SetupReport is what the check command prints.
type SetupReport struct {
	SalesChannel       string `json:"sales_channel" yaml:"sales_channel"`
	SalesChannelID     string `json:"sales_channel_id" yaml:"sales_channel_id"`
	MediaFolder        string `json:"media_folder" yaml:"media_folder"`
	MediaFolderID      string `json:"media_folder_id" yaml:"media_folder_id"`
	MediaFolderCreated bool   `json:"media_folder_created" yaml:"media_folder_created"`
	CurrencyID         string `json:"currency_id" yaml:"currency_id"`
	LanguageID         string `json:"language_id" yaml:"language_id"`
	TaxRates           int    `json:"tax_rates" yaml:"tax_rates"`
}

// NewCheckCommand creates the check command.
func (a *App) NewCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "check",
		GroupID: "core",
		Short:   "Verify target credentials and run-wide prerequisites",
		Long: `Check runs only the setup phase of a migration: it obtains an access token
and resolves the sales channel, media folder, currency, language and tax
rules, then prints what it found. A missing media folder is created.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.config.ValidateTarget(); err != nil {
				return err
			}

			tokens, client := a.TargetClient(nil, false)
			syncer, err := reconcile.New(client, nil, a.SyncConfig(nil, false), reconcile.WithTokenSource(tokens))
			if err != nil {
				return err
			}
			env, err := syncer.Setup(cmd.Context())
			if err != nil {
				return err
			}

			report := SetupReport{
				SalesChannel:       a.config.SalesChannel,
				SalesChannelID:     env.SalesChannelID,
				MediaFolder:        a.config.MediaFolder,
				MediaFolderID:      env.MediaFolderID,
				MediaFolderCreated: env.MediaFolderCreated,
				CurrencyID:         env.CurrencyID,
				LanguageID:         env.LanguageID,
				TaxRates:           env.Taxes.Len(),
			}
			return output.NewFormatter(output.DetectFormat(a.config.Format)).Format(cmd.OutOrStdout(), report)
		},
	}
}
