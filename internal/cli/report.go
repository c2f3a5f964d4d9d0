package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newReportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Print the registry summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			var out struct {
				Summary struct {
					TotalCars        int     `json:"total_cars"`
					AvailableCars    int     `json:"available_cars"`
					TotalCustomers   int     `json:"total_customers"`
					ActiveRentals    int     `json:"active_rentals"`
					CompletedRentals int     `json:"completed_rentals"`
					TotalRevenue     float64 `json:"total_revenue"`
				} `json:"summary"`
				Utilization float64 `json:"utilization"`
			}
			if err := client.GetJSON(cmd.Context(), "/v1/summary", &out); err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintln(w, "=== CAR RENTAL REGISTRY REPORT ===")
			fmt.Fprintf(w, "Total Cars:        %d\n", out.Summary.TotalCars)
			fmt.Fprintf(w, "Available Cars:    %d\n", out.Summary.AvailableCars)
			fmt.Fprintf(w, "Total Customers:   %d\n", out.Summary.TotalCustomers)
			fmt.Fprintf(w, "Active Rentals:    %d\n", out.Summary.ActiveRentals)
			fmt.Fprintf(w, "Completed Rentals: %d\n", out.Summary.CompletedRentals)
			fmt.Fprintf(w, "Total Revenue:     $%.2f\n", out.Summary.TotalRevenue)
			fmt.Fprintf(w, "Fleet Utilization: %.1f%%\n", out.Utilization)
			return nil
		},
	}
}
