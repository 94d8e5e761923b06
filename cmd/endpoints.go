package cmd

import (
	"fmt"

	"specprobe/internal/app"
	"specprobe/internal/openapi"
	"specprobe/internal/scenario"

	"github.com/spf13/cobra"
)

var (
	endpointsOpenAPI string
	endpointsCases   bool
	endpointsType    string
)

// endpointsCmd lists the operations of an OpenAPI document.
var endpointsCmd = &cobra.Command{
	Use:   "endpoints",
	Short: "List the endpoints of an OpenAPI document",
	Long: `Lists every operation of an OpenAPI document in document order. With
--cases the test cases that generate would produce are listed instead.

Examples:
  specprobe endpoints --openapi api.yaml
  specprobe endpoints --openapi api.yaml --cases --type security
  specprobe endpoints --openapi api.yaml --output-format json`,
	Args: cobra.NoArgs,
	RunE: runEndpoints,
}

func init() {
	rootCmd.AddCommand(endpointsCmd)

	endpointsCmd.Flags().StringVar(&endpointsOpenAPI, "openapi", "", "OpenAPI document (.yaml, .yml or .json)")
	endpointsCmd.Flags().BoolVar(&endpointsCases, "cases", false, "List the synthesized test cases instead")
	endpointsCmd.Flags().StringVar(&endpointsType, "type", "", "Only list cases of this scenario type (with --cases)")
	_ = endpointsCmd.MarkFlagRequired("openapi")
}

func runEndpoints(cmd *cobra.Command, args []string) error {
	if err := requireFile("OpenAPI file", endpointsOpenAPI); err != nil {
		return err
	}
	spec, err := openapi.Parse(endpointsOpenAPI)
	if err != nil {
		return err
	}
	formatter, err := newFormatter(cmd)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if !endpointsCases {
		fmt.Fprintln(out, formatter.FormatEndpoints(spec.Endpoints()))
		return nil
	}

	application, err := newApplication(cmd, "")
	if err != nil {
		return err
	}
	cases := scenario.Synthesize(spec, nil, scenario.Options{
		Categories:       app.Categories(application.Settings().Generator),
		PerformanceSLAMs: application.Settings().Generator.PerformanceSLAMs,
	})
	if endpointsType != "" {
		t, err := scenario.ParseScenarioType(endpointsType)
		if err != nil {
			return newInputError("%v", err)
		}
		cases = scenario.FilterByType(cases, t)
	}
	fmt.Fprintln(out, formatter.FormatTestCases(cases))
	return nil
}
