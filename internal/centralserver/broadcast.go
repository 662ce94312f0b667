package centralserver

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/edvin/provisioning/internal/model"
)

// Broadcast sends a list request to every central server in parallel and
// merges the results. Every central server must answer with 200 and a JSON
// array; the first failure fails the whole call. The merged list is sorted
// by the object type's sort key.
func (c *Client) Broadcast(ctx context.Context, t model.ObjectType, template ForwardRequest) ([]map[string]any, error) {
	results := make([][]map[string]any, len(c.shards))

	g, gctx := errgroup.WithContext(ctx)
	for i, shard := range c.shards {
		g.Go(func() error {
			fr := template
			fr.ShardID = shard.ID
			fr.Type = t
			fr.ID = ""
			fr.List = true
			resp, err := c.Forward(gctx, fr)
			if err != nil {
				return err
			}
			results[i] = resp.Body.List
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("broadcast %s: %w", t, err)
	}

	var n int
	for _, r := range results {
		n += len(r)
	}
	merged := make([]map[string]any, 0, n)
	for _, r := range results {
		merged = append(merged, r...)
	}

	SortObjects(merged, t)
	return merged, nil
}

// SortObjects orders objects by the sort key of t. Objects without a usable
// key keep their relative order after all keyed objects.
func SortObjects(objs []map[string]any, t model.ObjectType) {
	key, kind := t.SortKey()
	if key == "" {
		return
	}
	slices.SortStableFunc(objs, func(a, b map[string]any) int {
		return compareKeys(a[key], b[key], kind)
	})
}

func compareKeys(a, b any, kind model.SortKind) int {
	if kind == model.SortNumeric {
		na, okA := numericKey(a)
		nb, okB := numericKey(b)
		switch {
		case okA && okB:
			return na.compare(nb)
		case okA:
			return -1
		case okB:
			return 1
		}
		return 0
	}

	sa, okA := a.(string)
	sb, okB := b.(string)
	switch {
	case okA && okB:
		return strings.Compare(sa, sb)
	case okA:
		return -1
	case okB:
		return 1
	}
	return 0
}

// number keeps integers exact; ids above 2^53 do not survive float64.
type number struct {
	i     int64
	f     float64
	isInt bool
}

func (n number) compare(o number) int {
	if n.isInt && o.isInt {
		return cmp.Compare(n.i, o.i)
	}
	return cmp.Compare(n.float(), o.float())
}

func (n number) float() float64 {
	if n.isInt {
		return float64(n.i)
	}
	return n.f
}

func parseNumber(s string) (number, bool) {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return number{i: i, isInt: true}, true
	}
	f, err := strconv.ParseFloat(s, 64)
	return number{f: f}, err == nil
}

func numericKey(v any) (number, bool) {
	switch n := v.(type) {
	case json.Number:
		return parseNumber(n.String())
	case string:
		return parseNumber(n)
	case float64:
		return number{f: n}, true
	case int:
		return number{i: int64(n), isInt: true}, true
	case int64:
		return number{i: n, isInt: true}, true
	}
	return number{}, false
}
