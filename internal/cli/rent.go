package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRentCmd() *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "rent <customer-id> <car-id>",
		Short: "Rent a car for a customer",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			var rec struct {
				ID        string  `json:"id"`
				TotalCost float64 `json:"total_cost"`
			}
			body := map[string]any{
				"customer_id": args[0],
				"car_id":      args[1],
				"days":        days,
			}
			if err := client.PostJSON(cmd.Context(), "/v1/rentals", body, &rec); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "rental %s created, total $%.2f\n", rec.ID, rec.TotalCost)
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", 1, "rental duration in days")
	return cmd
}

func newReturnCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "return <car-id>",
		Short: "Return a rented car",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			body := map[string]any{"car_id": args[0]}
			if err := client.PostJSON(cmd.Context(), "/v1/rentals/return", body, nil); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "car %s returned\n", args[0])
			return nil
		},
	}
}
