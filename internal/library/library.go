// Package library implements the destructive operations the CLI exposes:
// quarantining suspect files, restoring them, and renaming entries to their
// canonical filenames. Every operation is recorded in the catalog's action
// log before the filesystem changes.
package library

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"ludex/internal/catalog"
	"ludex/internal/errs"
	"ludex/internal/fileutil"
	"ludex/internal/provider"
)

// QuarantineDirName is the holding directory created under the library root.
// The leading dot keeps the scanner from re-indexing quarantined files.
const QuarantineDirName = ".quarantine"

// Ops bundles the store and library root that operations act on.
type Ops struct {
	Store      *catalog.Store
	LibraryDir string
	SessionID  string
}

// NewOps constructs an operations handle with a fresh session id.
func NewOps(store *catalog.Store, libraryDir string) *Ops {
	return &Ops{Store: store, LibraryDir: libraryDir, SessionID: uuid.NewString()}
}

// Quarantine moves path into the quarantine directory and drops its catalog
// entry. Returns the destination path.
func (o *Ops) Quarantine(ctx context.Context, path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		return "", errs.Wrap(errs.ErrFileRead, "library", "quarantine", path, err)
	}
	dest := fileutil.UniquePath(filepath.Join(o.LibraryDir, QuarantineDirName, filepath.Base(path)))

	if _, err := o.Store.RecordAction(ctx, catalog.Action{
		SessionID: o.SessionID,
		Kind:      catalog.ActionQuarantine,
		Path:      path,
		Detail:    dest,
	}); err != nil {
		return "", err
	}
	if err := fileutil.MoveFile(path, dest); err != nil {
		return "", errs.Wrap(errs.ErrValidation, "library", "quarantine", "move to quarantine", err)
	}
	if err := o.Store.Delete(ctx, path); err != nil {
		return dest, err
	}
	return dest, nil
}

// Restore moves a previously quarantined file back to its original path,
// using the action log to find where it went. The entry reappears in the
// catalog on the next scan.
func (o *Ops) Restore(ctx context.Context, originalPath string) error {
	action, err := o.Store.LastActionFor(ctx, originalPath, catalog.ActionQuarantine)
	if err != nil {
		return err
	}
	if action == nil || action.Detail == "" {
		return errs.Wrap(errs.ErrValidation, "library", "restore",
			fmt.Sprintf("no quarantine record for %s", originalPath), nil)
	}
	if _, err := os.Stat(action.Detail); err != nil {
		return errs.Wrap(errs.ErrFileRead, "library", "restore", action.Detail, err)
	}

	if _, err := o.Store.RecordAction(ctx, catalog.Action{
		SessionID: o.SessionID,
		Kind:      catalog.ActionRestore,
		Path:      originalPath,
		Detail:    action.Detail,
	}); err != nil {
		return err
	}
	if err := fileutil.MoveFile(action.Detail, fileutil.UniquePath(originalPath)); err != nil {
		return errs.Wrap(errs.ErrValidation, "library", "restore", "move from quarantine", err)
	}
	return nil
}

// Rename moves an indexed file to the canonical name its provider suggests
// and updates the catalog row. A file already canonically named is a no-op
// returning the current path.
func (o *Ops) Rename(ctx context.Context, entry *catalog.Entry, prov provider.Provider) (string, error) {
	if prov == nil {
		return "", errs.Wrap(errs.ErrUnsupportedFormat, "library", "rename", entry.Path, nil)
	}
	meta := provider.Metadata{Serial: entry.Serial, Title: entry.Title, Extra: entry.Extra}
	ideal := prov.IdealFilename(entry.Path, meta)
	if ideal == "" || ideal == filepath.Base(entry.Path) {
		return entry.Path, nil
	}
	dest := fileutil.UniquePath(filepath.Join(filepath.Dir(entry.Path), ideal))

	if _, err := o.Store.RecordAction(ctx, catalog.Action{
		SessionID: o.SessionID,
		Kind:      catalog.ActionRename,
		Path:      entry.Path,
		Detail:    dest,
	}); err != nil {
		return "", err
	}
	if err := fileutil.MoveFile(entry.Path, dest); err != nil {
		return "", errs.Wrap(errs.ErrValidation, "library", "rename", "move file", err)
	}

	if err := o.Store.Delete(ctx, entry.Path); err != nil {
		return dest, err
	}
	renamed := *entry
	renamed.Path = dest
	if err := o.Store.Upsert(ctx, &renamed); err != nil {
		return dest, err
	}
	return dest, nil
}

// Remove deletes a library file permanently and drops its catalog entry.
func (o *Ops) Remove(ctx context.Context, path string) error {
	if _, err := o.Store.RecordAction(ctx, catalog.Action{
		SessionID: o.SessionID,
		Kind:      catalog.ActionDelete,
		Path:      path,
	}); err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		return errs.Wrap(errs.ErrFileRead, "library", "remove", path, err)
	}
	return o.Store.Delete(ctx, path)
}
