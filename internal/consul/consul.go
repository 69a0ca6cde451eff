package consul

import (
	"fmt"

	consulapi "github.com/hashicorp/consul/api"
)

func NewClient(addr string) (*consulapi.Client, error) {
	cfg := consulapi.DefaultConfig()
	if addr != "" {
		cfg.Address = addr
	}
	client, err := consulapi.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create consul client: %w", err)
	}
	return client, nil
}

// GetServiceAddress returns the address and port of the first healthy instance of serviceName.
func GetServiceAddress(client *consulapi.Client, serviceName string) (string, int, error) {
	if client == nil {
		return "", 0, fmt.Errorf("consul client is nil")
	}
	entries, _, err := client.Health().Service(serviceName, "", true, nil)
	if err != nil {
		return "", 0, fmt.Errorf("failed to query consul for %s: %w", serviceName, err)
	}
	if len(entries) == 0 {
		return "", 0, fmt.Errorf("no healthy instance of %s", serviceName)
	}
	entry := entries[0]
	address := entry.Service.Address
	if address == "" {
		address = entry.Node.Address
	}
	return address, entry.Service.Port, nil
}

// RegisterService registers this instance with the local agent, with an HTTP
// health check against checkURL.
func RegisterService(client *consulapi.Client, id, name, host string, port int, checkURL string) error {
	registration := &consulapi.AgentServiceRegistration{
		ID:      id,
		Name:    name,
		Address: host,
		Port:    port,
		Check: &consulapi.AgentServiceCheck{
			HTTP:                           checkURL,
			Interval:                       "10s",
			Timeout:                        "2s",
			DeregisterCriticalServiceAfter: "1m",
		},
	}
	if err := client.Agent().ServiceRegister(registration); err != nil {
		return fmt.Errorf("failed to register %s with consul: %w", name, err)
	}
	return nil
}

func DeregisterService(client *consulapi.Client, id string) error {
	if err := client.Agent().ServiceDeregister(id); err != nil {
		return fmt.Errorf("failed to deregister %s from consul: %w", id, err)
	}
	return nil
}
