package gwctl

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/edvin/provisioning/internal/config"
	"github.com/edvin/provisioning/internal/db"
	"github.com/edvin/provisioning/internal/model"
)

// CheckConfig loads and validates a registry file and prints a summary.
// With ping set it also connects to every central server database.
func CheckConfig(ctx context.Context, out io.Writer, path string, ping bool) error {
	reg, err := config.LoadRegistry(path)
	if err != nil {
		return err
	}
	if _, err := reg.CompiledUsers(); err != nil {
		return err
	}

	shards := reg.Shards()
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tURL\tTLDS\tREGISTRARS\tPROBE NODES")
	for _, s := range shards {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%d\n", s.ID, s.URL,
			s.Limit(model.ObjectTypeTLD), s.Limit(model.ObjectTypeRegistrar), s.Limit(model.ObjectTypeProbeNode))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	users := make([]string, 0, len(reg.Users))
	for _, u := range reg.Users {
		users = append(users, u.Username)
	}
	sort.Strings(users)
	fmt.Fprintf(out, "users: %s\n", strings.Join(users, ", "))
	fmt.Fprintf(out, "groups: tld=%q probe=%q\n", reg.TLDGroup, reg.ProbeGroup)
	fmt.Fprintf(out, "alert types: %s\n", strings.Join(reg.AlertTypes, ", "))

	if !ping {
		return nil
	}
	pools, err := db.NewShardPools(ctx, shards)
	if err != nil {
		return err
	}
	defer db.ClosePools(pools)
	fmt.Fprintf(out, "databases: %d reachable\n", len(pools))
	return nil
}
