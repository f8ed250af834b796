package workflow

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/ktcloud-ops/snapguard/internal/cloud/gplatform"
)

// Target is one entry of the disk list file: the disk to snapshot and,
// optionally, the server that owns it. The server name is only required when
// the disk name is not unique across servers.
type Target struct {
	DiskName   string
	ServerName string
}

// ReadTargets parses the disk list file, one "disk_name[,server_name]" entry
// per line. Blank lines are skipped and whitespace is trimmed. Targets keep
// their file order; cycles attempt them in that order.
func ReadTargets(path string) ([]Target, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading disk list %s: %w", path, err)
	}
	defer f.Close()

	var targets []Target
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		name, server, _ := strings.Cut(line, ",")
		targets = append(targets, Target{
			DiskName:   strings.TrimSpace(name),
			ServerName: strings.TrimSpace(server),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading disk list %s: %w", path, err)
	}

	return targets, nil
}

// DiskIndex maps disk name -> owning server name -> disk id. Disk names are
// only unique within a server, hence the two levels. The index is rebuilt from
// a fresh inventory at the start of every create cycle and never cached.
type DiskIndex map[string]map[string]string

// BuildDiskIndex indexes a volume inventory for target resolution.
func BuildDiskIndex(disks []gplatform.Disk) DiskIndex {
	index := make(DiskIndex)
	for _, d := range disks {
		owners, ok := index[d.Name]
		if !ok {
			owners = make(map[string]string)
			index[d.Name] = owners
		}
		owners[d.OwnerName] = d.ID
	}
	return index
}

// Resolve finds the disk id for a target. qualified reports whether the disk
// name has multiple owners in the inventory, in which case the snapshot name
// must carry the server name to stay collision-free.
//
// A target without a server name resolves only when the inventory has exactly
// one owner for that disk name; more than one is an ambiguity error.
func (ix DiskIndex) Resolve(t Target) (diskID string, qualified bool, err error) {
	owners, ok := ix[t.DiskName]
	if !ok {
		return "", false, fmt.Errorf("disk %q does not exist in the inventory", t.DiskName)
	}

	qualified = len(owners) > 1

	if t.ServerName != "" {
		id, ok := owners[t.ServerName]
		if !ok {
			return "", qualified, fmt.Errorf("disk %q has no owner %q in the inventory", t.DiskName, t.ServerName)
		}
		return id, qualified, nil
	}

	if len(owners) == 1 {
		for _, id := range owners {
			return id, false, nil
		}
	}

	return "", qualified, fmt.Errorf("disk name %q is owned by %d servers; qualify it with a server name", t.DiskName, len(owners))
}

// snapshotName builds the deterministic name for a new snapshot. The short
// form is used whenever the disk name is unambiguous; the server name is only
// inserted when needed, so retention matching on the trailing date token works
// for both forms.
func snapshotName(t Target, qualified bool, today string) string {
	if qualified {
		return fmt.Sprintf("%s-%s-%s", t.DiskName, t.ServerName, today)
	}
	return fmt.Sprintf("%s-%s", t.DiskName, today)
}
