package deploy

import "strings"

const (
	// deploymentRoot is the fixed path segment that marks deployment
	// scripts, i.e. segment[1] of every recognized path.
	deploymentRoot = "deployment"

	// deploymentIDPrefix is the required prefix of a deployment identifier
	// (path segment[2]).
	deploymentIDPrefix = "SCT-"

	// minPathSegments is the minimum number of slash-delimited segments a
	// recognized script path decomposes into.
	minPathSegments = 4
)

// GroupScripts partitions the incoming file list into deployment groups
// keyed by deployment id.
//
// A file belongs to a group only when its path splits into at least four
// slash-delimited segments, segment[1] is the deployment-scripts root, and
// segment[2] carries the deployment-id prefix. Files failing any check are
// unrelated to this system and are silently dropped: they are never
// recorded or notified.
//
// Example usage:
//
//	groups := deploy.GroupScripts(files)
//	for id, scripts := range groups {
//		fmt.Printf("%s: %d scripts\n", id, len(scripts))
//	}
func GroupScripts(files []ScriptFile) map[string][]ScriptFile {
	groups := make(map[string][]ScriptFile)

	for _, f := range files {
		parts := strings.Split(f.Path, "/")
		if len(parts) < minPathSegments {
			continue
		}

		if parts[1] != deploymentRoot {
			continue
		}

		id := parts[2]
		if !strings.HasPrefix(id, deploymentIDPrefix) {
			continue
		}

		groups[id] = append(groups[id], f)
	}

	return groups
}
