package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/CarRentLink/CarRentLink/internal/common/discovery"
)

var (
	flagAddr    string
	flagToken   string
	flagConsul  string
	flagService string
)

// NewRootCmd 构建 rentalctl 根命令。
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "rentalctl",
		Short:        "Operate a running rental-service over its HTTP API",
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&flagAddr, "addr", "http://localhost:8080", "rental-service base URL")
	root.PersistentFlags().StringVar(&flagToken, "token", "", "bearer token (when auth is enabled)")
	root.PersistentFlags().StringVar(&flagConsul, "consul", "", "Consul address (host:port) to resolve the service instead of --addr")
	root.PersistentFlags().StringVar(&flagService, "service", "rental-service", "service name to resolve in Consul")

	root.AddCommand(newSeedCmd())
	root.AddCommand(newRentCmd())
	root.AddCommand(newReturnCmd())
	root.AddCommand(newReportCmd())

	return root
}

// newClient 按 flags 构建客户端；配置了 --consul 时通过健康实例寻址。
func newClient() (*Client, error) {
	base := flagAddr
	if flagConsul != "" {
		consulClient, err := discovery.NewConsulClient(splitHostPort(flagConsul))
		if err != nil {
			return nil, fmt.Errorf("connect consul: %w", err)
		}
		addrs, err := discovery.ResolveHealthy(consulClient, flagService)
		if err != nil {
			return nil, err
		}
		if len(addrs) == 0 {
			return nil, fmt.Errorf("no healthy instances of %s", flagService)
		}
		base = "http://" + addrs[0]
	}
	return NewClient(base, flagToken), nil
}

func splitHostPort(addr string) (string, int) {
	host := addr
	port := 8500
	if i := lastColon(addr); i >= 0 {
		host = addr[:i]
		fmt.Sscanf(addr[i+1:], "%d", &port)
	}
	return host, port
}

func lastColon(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == ':' {
			return i
		}
	}
	return -1
}
