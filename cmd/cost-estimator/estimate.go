package main

import (
	"io"
	"strings"

	"github.com/iwvelando/cost-estimator/internal/estimator"
	"github.com/iwvelando/cost-estimator/pkg/constants"
	"github.com/iwvelando/cost-estimator/pkg/output"
	"github.com/iwvelando/cost-estimator/pkg/validation"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type estimateFlags struct {
	country   string
	city      string
	lifestyle string
	stay      int
	housing   string
	traveler  string
	workStyle string
	output    string
	guide     bool
}

func newEstimateCmd(a *app) *cobra.Command {
	f := &estimateFlags{}

	cmd := &cobra.Command{
		Use:   "estimate",
		Short: "Estimate monthly costs for one destination",
		Example: "  cost-estimator estimate --country thailand --lifestyle comfortable --stay 6 --housing studio\n" +
			"  cost-estimator estimate --country portugal --traveler couple --output json",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.estimate(cmd.OutOrStdout(), f)
		},
	}

	cmd.Flags().StringVar(&f.country, "country", "", "destination key (see the destinations command)")
	cmd.Flags().StringVar(&f.city, "city", "", "optional city shown in the output")
	cmd.Flags().StringVar(&f.lifestyle, "lifestyle", string(estimator.Comfortable), "budget, comfortable or premium")
	cmd.Flags().IntVar(&f.stay, "stay", 6, "stay length in months")
	cmd.Flags().StringVar(&f.housing, "housing", string(estimator.Studio), "room, studio, 1br or 2br")
	cmd.Flags().StringVar(&f.traveler, "traveler", string(estimator.Solo), "solo or couple")
	cmd.Flags().StringVar(&f.workStyle, "work", string(estimator.Remote), "remote, local or student")
	cmd.Flags().StringVarP(&f.output, "output", "o", constants.OutputFormatPretty, "output format: pretty, json, csv")
	cmd.Flags().BoolVar(&f.guide, "guide", false, "print the relocation guide instead of the table")
	_ = cmd.MarkFlagRequired("country")
	return cmd
}

func (a *app) estimate(w io.Writer, f *estimateFlags) error {
	if err := validation.ValidateOutputFormat(f.output); err != nil {
		return err
	}

	table, err := a.table()
	if err != nil {
		return err
	}

	req := estimator.Request{
		Destination: strings.ToLower(strings.TrimSpace(f.country)),
		City:        strings.TrimSpace(f.city),
		Lifestyle:   estimator.Lifestyle(f.lifestyle),
		StayLength:  f.stay,
		Housing:     estimator.HousingType(f.housing),
		Traveler:    estimator.TravelerType(f.traveler),
		WorkStyle:   estimator.WorkStyle(f.workStyle),
	}
	result, err := estimator.New(table).Estimate(req)
	if err != nil {
		return err
	}

	name := req.Destination
	if profile, ok := table.Lookup(req.Destination); ok {
		name = profile.Name
	}
	e := output.Estimate{Destination: name, Request: req, Result: result}

	a.logger.Debug("estimate computed",
		zap.String("op", "main.estimate"),
		zap.String("destination", req.Destination),
		zap.Int64("total", result.Total),
	)

	if f.guide {
		return output.RenderGuide(w, e)
	}
	switch f.output {
	case constants.OutputFormatJSON:
		return output.JSONFormat(w, e)
	case constants.OutputFormatCSV:
		return output.CsvFormat(w, e)
	default:
		return output.PrettyFormat(w, e)
	}
}
