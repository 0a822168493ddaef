package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/filecoord/osnfs/client"
	"github.com/filecoord/osnfs/config"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "client.toml"
	}
	return filepath.Join(home, ".osnfs", "client.toml")
}

var rootCmd = &cobra.Command{
	Use:   "osnfs-client",
	Short: "Interact with a running osnfs cluster",
}

// newClient reads the client config named by the --config flag and
// builds a client.Client against its name node.
func newClient(cmd *cobra.Command) (*client.Client, error) {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.ReadFromFile[config.ClientConfig](configPath)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return client.New(cfg.Identity, cfg.NameNodeAddr), nil
}

var registerCmd = &cobra.Command{
	Use:   "register [my-address]",
	Short: "Register this client's identity and address with the name node",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient(cmd)
		if err != nil {
			return err
		}
		return c.Register(args[0])
	},
}

var viewCmd = &cobra.Command{
	Use:   "view",
	Short: "List every file's name, owner, and cached counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient(cmd)
		if err != nil {
			return err
		}
		entries, err := c.View()
		if err != nil {
			return err
		}
		for _, e := range entries {
			fmt.Printf("%-24s owner=%-12s words=%-6d chars=%d\n", e.Filename, e.Owner, e.WordCount, e.CharCount)
		}
		return nil
	},
}

var listUsersCmd = &cobra.Command{
	Use:   "list-users",
	Short: "List every known user identity",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient(cmd)
		if err != nil {
			return err
		}
		users, err := c.ListUsers()
		if err != nil {
			return err
		}
		for _, u := range users {
			fmt.Printf("%-16s %s\n", u.Identity, u.Address)
		}
		return nil
	},
}

var createCmd = &cobra.Command{
	Use:   "create [filename]",
	Short: "Create a new file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient(cmd)
		if err != nil {
			return err
		}
		return c.Create(args[0])
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete [filename]",
	Short: "Delete a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient(cmd)
		if err != nil {
			return err
		}
		return c.Delete(args[0])
	},
}

var readCmd = &cobra.Command{
	Use:   "read [filename]",
	Short: "Print a file's full body",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient(cmd)
		if err != nil {
			return err
		}
		body, err := c.Read(args[0])
		if err != nil {
			return err
		}
		fmt.Println(body)
		return nil
	},
}

var infoCmd = &cobra.Command{
	Use:   "info [filename]",
	Short: "Print a file's metadata",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient(cmd)
		if err != nil {
			return err
		}
		info, err := c.Info(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("owner:           %s\n", info.Owner)
		fmt.Printf("size:            %d\n", info.Size)
		fmt.Printf("word_count:      %d\n", info.WordCount)
		fmt.Printf("created:         %s\n", info.Created)
		fmt.Printf("modified:        %s\n", info.Modified)
		fmt.Printf("accessed:        %s\n", info.Accessed)
		fmt.Printf("last_accessed_by %s\n", info.LastAccessedBy)
		return nil
	},
}

var copyCmd = &cobra.Command{
	Use:   "copy [src] [dst]",
	Short: "Copy a file's content into a new name",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient(cmd)
		if err != nil {
			return err
		}
		return c.Copy(args[0], args[1])
	},
}

var writeCmd = &cobra.Command{
	Use:   "write [filename] [sentence-index] [edit-script]",
	Short: "Lock a sentence, apply an edit script, and release the lock",
	Long: "edit-script is the pipe-delimited wire format described in the " +
		"protocol: <sentence-index>|<word-index>|<word>|<word-index>|<word>|...",
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient(cmd)
		if err != nil {
			return err
		}
		idx, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid sentence index %q: %w", args[1], err)
		}
		return c.WriteCommit(args[0], idx, args[2])
	},
}

var streamCmd = &cobra.Command{
	Use:   "stream [filename]",
	Short: "Print a file word by word at reading pace",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient(cmd)
		if err != nil {
			return err
		}
		return c.StreamPaced(os.Stdout, args[0])
	},
}

var undoCmd = &cobra.Command{
	Use:   "undo [filename]",
	Short: "Toggle a file back to its state before the last write or revert",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient(cmd)
		if err != nil {
			return err
		}
		return c.Undo(args[0])
	},
}

var checkpointCmd = &cobra.Command{
	Use:   "checkpoint [filename] [tag]",
	Short: "Snapshot a file's current body under tag",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient(cmd)
		if err != nil {
			return err
		}
		return c.Checkpoint(args[0], args[1])
	},
}

var viewCheckpointCmd = &cobra.Command{
	Use:   "view-checkpoint [filename] [tag]",
	Short: "Print a checkpoint's stored body and timestamp",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient(cmd)
		if err != nil {
			return err
		}
		body, at, err := c.ViewCheckpoint(args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Printf("# %s\n%s\n", at, body)
		return nil
	},
}

var revertCmd = &cobra.Command{
	Use:   "revert [filename] [tag]",
	Short: "Replace a file's live body with a checkpoint's snapshot",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient(cmd)
		if err != nil {
			return err
		}
		return c.Revert(args[0], args[1])
	},
}

var listCheckpointsCmd = &cobra.Command{
	Use:   "list-checkpoints [filename]",
	Short: "List every checkpoint tag recorded for a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient(cmd)
		if err != nil {
			return err
		}
		tags, err := c.ListCheckpoints(args[0])
		if err != nil {
			return err
		}
		for _, tag := range tags {
			fmt.Println(tag)
		}
		return nil
	},
}

var requestAccessCmd = &cobra.Command{
	Use:   "request-access [filename]",
	Short: "Ask a file's owner for read access",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient(cmd)
		if err != nil {
			return err
		}
		return c.RequestAccess(args[0])
	},
}

var viewRequestsCmd = &cobra.Command{
	Use:   "view-requests",
	Short: "List every pending request against files this identity owns",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient(cmd)
		if err != nil {
			return err
		}
		reqs, err := c.ViewRequests()
		if err != nil {
			return err
		}
		for _, r := range reqs {
			fmt.Printf("%-24s requester=%-12s requested_at=%s\n", r.Filename, r.Requester, r.RequestedAt)
		}
		return nil
	},
}

var approveCmd = &cobra.Command{
	Use:   "approve [filename] [requester]",
	Short: "Grant a pending request's requester read access",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient(cmd)
		if err != nil {
			return err
		}
		return c.Approve(args[0], args[1])
	},
}

var denyCmd = &cobra.Command{
	Use:   "deny [filename] [requester]",
	Short: "Clear a pending request without granting access",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient(cmd)
		if err != nil {
			return err
		}
		return c.Deny(args[0], args[1])
	},
}

var remAccessCmd = &cobra.Command{
	Use:   "rem-access [filename] [target]",
	Short: "Revoke a user's access to a file directly",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient(cmd)
		if err != nil {
			return err
		}
		return c.RemAccess(args[0], args[1])
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init [identity]",
	Short: "Write a default config file for a user identity",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		cfg := config.DefaultClientConfig(args[0])
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
		cfg, err := config.ReadFromFile[config.ClientConfig](configPath)
		if err != nil {
			return fmt.Errorf("reading config: %w", err)
		}
		fmt.Printf("identity:       %s\n", cfg.Identity)
		fmt.Printf("name_node_addr: %s\n", cfg.NameNodeAddr)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", defaultConfigPath(), "path to the client config file")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)

	rootCmd.AddCommand(
		registerCmd,
		viewCmd,
		listUsersCmd,
		createCmd,
		deleteCmd,
		readCmd,
		infoCmd,
		copyCmd,
		writeCmd,
		streamCmd,
		undoCmd,
		checkpointCmd,
		viewCheckpointCmd,
		revertCmd,
		listCheckpointsCmd,
		requestAccessCmd,
		viewRequestsCmd,
		approveCmd,
		denyCmd,
		remAccessCmd,
		configCmd,
	)
}
