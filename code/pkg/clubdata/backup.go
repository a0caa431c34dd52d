package clubdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/goblimey/go-club-manager/code/pkg/database"
)

// BackupFormatVersion is written into every backup.  Restore refuses any
// other version.
const BackupFormatVersion = 1

// BackupFile is the layout of a backup.
type BackupFile struct {
	FormatVersion int                `json:"formatVersion"`
	CreatedAt     time.Time          `json:"createdAt"`
	Data          *database.Snapshot `json:"data"`
}

// Export returns the contents of all of the collections.
func (c *Club) Export(ctx context.Context) (*database.Snapshot, error) {
	snap, err := c.store.Export(ctx)
	if err != nil {
		return nil, fmt.Errorf("error exporting: %w", err)
	}
	return snap, nil
}

// Import replaces the contents of all of the collections with the
// snapshot.  If it fails, nothing is changed.
func (c *Club) Import(ctx context.Context, snap *database.Snapshot) error {

	if snap == nil {
		return reasonError("import", "no data")
	}

	err := c.store.Import(ctx, snap)
	if err != nil {
		c.logger.Error("Import: " + err.Error())
		return fmt.Errorf("error importing: %w", err)
	}

	c.logger.Info("imported snapshot", "members", len(snap.Members), "players", len(snap.Players))

	return nil
}

// Backup writes the contents of all of the collections to w as indented
// JSON.
func (c *Club) Backup(ctx context.Context, w io.Writer) error {

	snap, exportError := c.Export(ctx)
	if exportError != nil {
		return exportError
	}

	backup := BackupFile{
		FormatVersion: BackupFormatVersion,
		CreatedAt:     c.clock.Now().UTC(),
		Data:          snap,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	err := encoder.Encode(&backup)
	if err != nil {
		c.logger.Error("Backup: " + err.Error())
		return fmt.Errorf("error writing backup: %w", err)
	}

	return nil
}

// Restore reads a backup written by Backup and imports it.
func (c *Club) Restore(ctx context.Context, r io.Reader) error {

	const op = "restore"

	var backup BackupFile
	decodeError := json.NewDecoder(r).Decode(&backup)
	if decodeError != nil {
		c.logger.Error("Restore: " + decodeError.Error())
		return reasonError(op, "not a backup file: "+decodeError.Error())
	}

	if backup.FormatVersion != BackupFormatVersion {
		return reasonError(op, "unsupported backup format version "+strconv.Itoa(backup.FormatVersion))
	}
	if backup.Data == nil {
		return reasonError(op, "backup contains no data")
	}

	return c.Import(ctx, backup.Data)
}
