package syncer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/zenosslk/wazuh-api/internal/cluster"
	"github.com/zenosslk/wazuh-api/internal/cluster/api"
	"github.com/zenosslk/wazuh-api/internal/utils"
)

// FileInstaller applies one downloaded file to disk.
type FileInstaller interface {
	Install(targetPath string, content []byte, mtime string) error
}

// Options wire the synchronizer's collaborators.
type Options struct {
	Client    *api.Client
	Inventory InventoryProvider
	Installer FileInstaller

	// TargetDir is the root accepted files are installed under.
	TargetDir string

	// Concurrency bounds peer-level parallelism. Zero or one keeps the
	// strictly sequential reference behavior.
	Concurrency int
}

// Synchronizer reconciles this node's file set against every
// configured peer, one pull-only pass at a time.
type Synchronizer struct {
	cfg       *cluster.Config
	client    *api.Client
	inventory InventoryProvider
	installer FileInstaller
	targetDir string
	workers   int
}

func New(cfg *cluster.Config, opts *Options) *Synchronizer {
	workers := opts.Concurrency
	if workers < 1 {
		workers = 1
	}
	return &Synchronizer{
		cfg:       cfg,
		client:    opts.Client,
		inventory: opts.Inventory,
		installer: opts.Installer,
		targetDir: opts.TargetDir,
		workers:   workers,
	}
}

// ListPeers probes every configured peer. One failing peer never
// aborts enumeration; results keep configuration order.
func (s *Synchronizer) ListPeers(ctx context.Context) *api.PeerList {
	items := make([]*api.PeerStatus, len(s.cfg.Peers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, peer := range s.cfg.Peers {
		i, peer := i, peer
		g.Go(func() error {
			identity, err := s.client.NodeInfo(gctx, peer)
			if err != nil {
				items[i] = &api.PeerStatus{
					Address: peer,
					Status:  api.StatusDisconnected,
					Error:   api.AsTransportError(err),
				}
				return nil
			}
			items[i] = &api.PeerStatus{
				Address: peer,
				Node:    identity.Node,
				Status:  api.StatusConnected,
			}
			return nil
		})
	}
	g.Wait()

	return &api.PeerList{Items: items, TotalItems: len(items)}
}

// Sync runs one full reconciliation pass and returns the aggregated
// report. Peer and file failures are recorded, never propagated; only
// a missing local inventory fails the pass itself.
func (s *Synchronizer) Sync(ctx context.Context) (*SyncReport, error) {
	local, err := s.inventory.Files()
	if err != nil {
		return nil, fmt.Errorf("local inventory: %w", err)
	}

	report := &SyncReport{
		ID:        uuid.NewString(),
		Discarded: []*SyncItem{},
		Errors:    []*SyncError{},
		Updated:   []*SyncItem{},
	}
	slog.Info("sync pass start", "pass", report.ID, "peers", len(s.cfg.Peers), "local_files", len(local))

	results := make([]*peerResult, len(s.cfg.Peers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, peer := range s.cfg.Peers {
		i, peer := i, peer
		g.Go(func() error {
			results[i] = s.syncPeer(gctx, peer, local)
			return nil
		})
	}
	g.Wait()

	// merge in configuration order so the report is deterministic
	for _, res := range results {
		report.Discarded = append(report.Discarded, res.discarded...)
		report.Errors = append(report.Errors, res.errors...)
		report.Updated = append(report.Updated, res.updated...)
	}

	slog.Info("sync pass done", "pass", report.ID,
		"updated", len(report.Updated),
		"discarded", len(report.Discarded),
		"errors", len(report.Errors))
	return report, nil
}

type peerResult struct {
	discarded []*SyncItem
	errors    []*SyncError
	updated   []*SyncItem
}

func (s *Synchronizer) syncPeer(ctx context.Context, peer string, local cluster.Inventory) *peerResult {
	res := &peerResult{}

	remote, err := s.client.Files(ctx, peer)
	if err != nil {
		te := api.AsTransportError(err)
		slog.Warn("peer inventory fetch failed", "peer", peer, "code", int(te.Code), "error", te.Message)
		res.errors = append(res.errors, &SyncError{Peer: peer, Code: int(te.Code), Message: te.Message})
		return res
	}

	localNames := mapset.NewSet(local.Names()...)
	remoteNames := mapset.NewSet(remote.Names()...)

	shared := localNames.Intersect(remoteNames)
	missingLocally := remoteNames.Difference(localNames)
	// computed for visibility only: this pass never pushes
	missingRemotely := localNames.Difference(remoteNames)

	slog.Debug("peer inventory diff", "peer", peer,
		"shared", shared.Cardinality(),
		"missing_locally", missingLocally.Cardinality(),
		"missing_remotely", missingRemotely.Cardinality())

	var accepted []*SyncItem
	for _, name := range sorted(shared) {
		item := Compare(local[name], remote[name], peer)
		if item.Decision == DecisionAccept {
			accepted = append(accepted, item)
		} else {
			res.discarded = append(res.discarded, item)
		}
	}
	for _, name := range sorted(missingLocally) {
		accepted = append(accepted, MissingItem(remote[name], peer))
	}

	for _, item := range accepted {
		if err := s.apply(ctx, peer, item); err != nil {
			// file failures stay file-scoped: record and move on
			var code int
			var te *api.TransportError
			if errors.As(err, &te) {
				code = int(te.Code)
			}
			slog.Warn("file sync failed", "peer", peer, "file", item.File.Name, "error", err)
			res.errors = append(res.errors, &SyncError{Peer: peer, Item: item, Code: code, Message: err.Error()})
			continue
		}
		item.Applied = true
		res.updated = append(res.updated, item)
		slog.Info("file updated", "peer", peer, "file", item.File.Name, "size", item.File.Size)
	}

	return res
}

func (s *Synchronizer) apply(ctx context.Context, peer string, item *SyncItem) error {
	target, err := s.targetFor(item.File.Name)
	if err != nil {
		return err
	}

	content, err := s.client.Download(ctx, peer, item.File.Name)
	if err != nil {
		return err
	}

	// the downloaded bytes must match the inventory record that won the
	// comparison, a mismatch means the peer changed mid-pass
	if item.File.Checksum != "" && utils.ContentHash(content) != item.File.Checksum {
		return fmt.Errorf("checksum mismatch for %q from %s", item.File.Name, peer)
	}

	return s.installer.Install(target, content, item.File.ModTime)
}

// targetFor rejects remote names that would escape the target root.
func (s *Synchronizer) targetFor(name string) (string, error) {
	if name == "" || filepath.IsAbs(name) {
		return "", fmt.Errorf("unsafe file name %q", name)
	}
	clean := filepath.Clean(filepath.FromSlash(name))
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("unsafe file name %q", name)
	}
	return filepath.Join(s.targetDir, clean), nil
}

func sorted(set mapset.Set[string]) []string {
	names := set.ToSlice()
	slices.Sort(names)
	return names
}
