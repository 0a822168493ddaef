package main

import (
	"context"
	"fmt"
	"net"
	"net/rpc"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/filecoord/osnfs/config"
	"github.com/filecoord/osnfs/helper"
	"github.com/filecoord/osnfs/namenode"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "nameserver.toml"
	}
	return filepath.Join(home, ".osnfs", "nameserver.toml")
}

var rootCmd = &cobra.Command{
	Use:   "nameserver",
	Short: "Run or configure the name node",
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the name node, serving RPC until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")

		cfg, err := config.ReadFromFile[config.NameNodeConfig](configPath)
		if err != nil {
			return fmt.Errorf("reading config: %w", err)
		}

		log := helper.NewLogger("[nameserver]")

		store, err := namenode.OpenStore(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("opening registry store: %w", err)
		}
		defer store.Close()

		reg, err := namenode.NewRegistry(namenode.Config{
			CacheCapacity: cfg.CacheCapacity,
			Store:         store,
			Logger:        log,
		})
		if err != nil {
			return fmt.Errorf("initializing registry: %w", err)
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go reg.RunFailureDetector(ctx)

		server := rpc.NewServer()
		if err := server.Register(namenode.NewNameNode(reg)); err != nil {
			return fmt.Errorf("registering rpc service: %w", err)
		}

		ln, err := net.Listen("tcp", cfg.ListenAddr)
		if err != nil {
			return fmt.Errorf("listening on %s: %w", cfg.ListenAddr, err)
		}
		log.Infof("name node listening on %s", cfg.ListenAddr)

		server.Accept(ln)
		return nil
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		cfg := config.DefaultNameNodeConfig()
		if err := config.WriteToFile(configPath, cfg); err != nil {
			return fmt.Errorf("initializing config: %w", err)
		}
		fmt.Printf("Configuration written to %s\n", configPath)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		cfg, err := config.ReadFromFile[config.NameNodeConfig](configPath)
		if err != nil {
			return fmt.Errorf("reading config: %w", err)
		}
		fmt.Printf("listen_addr:    %s\n", cfg.ListenAddr)
		fmt.Printf("db_path:        %s\n", cfg.DBPath)
		fmt.Printf("cache_capacity: %d\n", cfg.CacheCapacity)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", defaultConfigPath(), "path to the name node config file")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(configCmd)
}
