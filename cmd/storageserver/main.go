package main

import (
	"context"
	"fmt"
	"net"
	"net/rpc"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/filecoord/osnfs/config"
	"github.com/filecoord/osnfs/helper"
	"github.com/filecoord/osnfs/models"
	"github.com/filecoord/osnfs/storagenode"
	"github.com/filecoord/osnfs/vault"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "storageserver.toml"
	}
	return filepath.Join(home, ".osnfs", "storageserver.toml")
}

var rootCmd = &cobra.Command{
	Use:   "storageserver",
	Short: "Run or configure a storage node",
}

func buildBackend(cfg *config.StorageNodeConfig) (vault.Backend, error) {
	switch cfg.Backend {
	case "", "fs":
		return vault.NewFSBackend(cfg.FSContentDir)
	case "s3":
		return vault.NewS3Backend(context.Background(), vault.S3Config{
			Bucket: cfg.S3Bucket,
			Prefix: cfg.S3Prefix,
			Region: cfg.S3Region,
		})
	default:
		return nil, fmt.Errorf("unknown content backend %q", cfg.Backend)
	}
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the storage node, registering with the name node and serving RPC",
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")

		cfg, err := config.ReadFromFile[config.StorageNodeConfig](configPath)
		if err != nil {
			return fmt.Errorf("reading config: %w", err)
		}

		log := helper.NewLogger("[storageserver]")

		backend, err := buildBackend(cfg)
		if err != nil {
			return fmt.Errorf("building content backend: %w", err)
		}

		nn := storagenode.NewRPCNNLink(cfg.NameNodeAddr)

		sn, err := storagenode.New(storagenode.Config{
			ID:      cfg.ID,
			Content: backend,
			MetaDir: cfg.MetaDir,
			NN:      nn,
			Logger:  log,
		})
		if err != nil {
			return fmt.Errorf("initializing storage node: %w", err)
		}

		ln, err := net.Listen("tcp", cfg.ListenAddr)
		if err != nil {
			return fmt.Errorf("listening on %s: %w", cfg.ListenAddr, err)
		}

		host, portStr, err := net.SplitHostPort(ln.Addr().String())
		if err != nil {
			return fmt.Errorf("parsing listen address: %w", err)
		}
		_ = host
		clientPort, err := parsePort(portStr)
		if err != nil {
			return fmt.Errorf("parsing listen port: %w", err)
		}

		if err := registerWithNameNode(cfg, clientPort); err != nil {
			return fmt.Errorf("registering with name node: %w", err)
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go nn.RunHeartbeats(ctx, cfg.ID, log)

		server := rpc.NewServer()
		if err := server.Register(storagenode.NewService(sn)); err != nil {
			return fmt.Errorf("registering rpc service: %w", err)
		}

		log.Infof("storage node %s listening on %s", cfg.ID, cfg.ListenAddr)
		server.Accept(ln)
		return nil
	},
}

func registerWithNameNode(cfg *config.StorageNodeConfig, clientPort int) error {
	client, err := rpc.Dial("tcp", cfg.NameNodeAddr)
	if err != nil {
		return err
	}
	defer client.Close()

	args := &models.RegisterSSArgs{
		ID:          cfg.ID,
		Address:     advertiseHost(cfg.ListenAddr),
		ControlPort: clientPort,
		ClientPort:  clientPort,
	}
	var reply models.RegisterSSReply
	if err := client.Call("NameNode.RegisterSS", args, &reply); err != nil {
		return err
	}
	if reply.Code != models.Success {
		return fmt.Errorf("name node rejected registration: %s", reply.Code)
	}
	return nil
}

// advertiseHost picks the host clients should dial. "0.0.0.0" is not
// dialable, so it is rewritten to the loopback address for local
// development setups.
func advertiseHost(listenAddr string) string {
	host, _, err := net.SplitHostPort(listenAddr)
	if err != nil || host == "" || host == "0.0.0.0" {
		return "127.0.0.1"
	}
	return host
}

func parsePort(s string) (int, error) {
	return strconv.Atoi(s)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init [ID]",
	Short: "Write a default config file for a storage node ID",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		cfg := config.DefaultStorageNodeConfig(args[0])
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
		cfg, err := config.ReadFromFile[config.StorageNodeConfig](configPath)
		if err != nil {
			return fmt.Errorf("reading config: %w", err)
		}
		fmt.Printf("id:              %s\n", cfg.ID)
		fmt.Printf("listen_addr:     %s\n", cfg.ListenAddr)
		fmt.Printf("name_node_addr:  %s\n", cfg.NameNodeAddr)
		fmt.Printf("backend:         %s\n", cfg.Backend)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", defaultConfigPath(), "path to the storage node config file")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(configCmd)
}
