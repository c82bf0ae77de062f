// libsqlpool-demo is an example caller of the connection manager. It plays
// the role of the external pool: it builds a manager for a remote replica,
// checks a connection out, validates it and runs a trivial query.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/calyxdb/libsqlpool/pkg/logger"
	"github.com/calyxdb/libsqlpool/pkg/manager"
)

var (
	replicaPath  string
	syncInterval time.Duration
	extensions   []string
)

var rootCmd = &cobra.Command{
	Use:   "libsqlpool-demo",
	Short: "Connect to a libsql remote replica through the connection manager",
	Long: "Builds a remote-replica connection manager from LIBSQL_URL and LIBSQL_AUTH_TOKEN, " +
		"checks a connection out, validates it and runs a trivial query.",
	RunE: run,
}

func run(cmd *cobra.Command, args []string) error {
	url := os.Getenv("LIBSQL_URL")
	token := os.Getenv("LIBSQL_AUTH_TOKEN")
	if url == "" || token == "" {
		return fmt.Errorf("LIBSQL_URL and LIBSQL_AUTH_TOKEN must be set")
	}

	// --sync-interval=0 means no background cadence, so no option at all.
	var opts []manager.SourceOption
	if syncInterval > 0 {
		opts = append(opts, manager.WithSyncInterval(syncInterval))
	}
	if len(extensions) > 0 {
		opts = append(opts, manager.WithExtensions(extensions...))
	}

	src, err := manager.NewRemoteReplica(replicaPath, url, token, opts...)
	if err != nil {
		return err
	}

	log := logger.New("libsqlpool-demo")
	mgr := manager.New(src, manager.WithLogger(log))

	ctx := cmd.Context()

	conn, err := mgr.Connect(ctx)
	if err != nil {
		return fmt.Errorf("could not acquire connection: %w", err)
	}
	defer conn.Close()

	if err := mgr.IsValid(ctx, conn); err != nil {
		return fmt.Errorf("connection failed validation: %w", err)
	}

	var value int
	sqlConn := conn.Raw().(*sql.Conn)
	if err := sqlConn.QueryRowContext(ctx, "SELECT 1;").Scan(&value); err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	log.WithFields(map[string]string{
		"connection": conn.ID(),
		"result":     fmt.Sprintf("%d", value),
	}).Info("Query succeeded")

	return nil
}

func init() {
	rootCmd.Flags().StringVar(&replicaPath, "replica-path", "sync.db", "Path of the local replica file")
	rootCmd.Flags().DurationVar(&syncInterval, "sync-interval", 60*time.Second, "Background resync cadence (0 disables background resync)")
	rootCmd.Flags().StringSliceVar(&extensions, "extensions", splitEnvList(os.Getenv("LIBSQL_EXTENSIONS")), "Extension libraries to load on each connection")
}

func splitEnvList(value string) []string {
	if value == "" {
		return nil
	}
	return strings.Split(value, ",")
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
