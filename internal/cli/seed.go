package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/CarRentLink/CarRentLink/internal/loader"
)

// newSeedCmd 把种子文件（JSON 车辆 / CSV 客户）通过 API 推送到运行中的服务。
func newSeedCmd() *cobra.Command {
	var carsPath, customersPath string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Push car/customer fixtures into the service",
		RunE: func(cmd *cobra.Command, args []string) error {
			if carsPath == "" && customersPath == "" {
				return fmt.Errorf("at least one of --cars / --customers is required")
			}
			client, err := newClient()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			if carsPath != "" {
				cars, err := loader.LoadCarsJSON(carsPath)
				if err != nil {
					return err
				}
				for _, c := range cars {
					if err := client.PostJSON(ctx, "/v1/cars", c, nil); err != nil {
						return err
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "seeded %d cars\n", len(cars))
			}

			if customersPath != "" {
				customers, err := loader.LoadCustomersCSV(customersPath)
				if err != nil {
					return err
				}
				for _, c := range customers {
					if err := client.PostJSON(ctx, "/v1/customers", c, nil); err != nil {
						return err
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "seeded %d customers\n", len(customers))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&carsPath, "cars", "", "cars fixture file (JSON)")
	cmd.Flags().StringVar(&customersPath, "customers", "", "customers fixture file (CSV)")
	return cmd
}
