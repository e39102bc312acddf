package main

type Decision int

const (
	// DecisionNoop is for units with no files, nothing is read or written.
	DecisionNoop Decision = iota
	DecisionSkip
	DecisionUpload
)

func (d Decision) String() string {
	switch d {
	case DecisionNoop:
		return "noop"
	case DecisionSkip:
		return "skip"
	case DecisionUpload:
		return "upload"
	}
	return "unknown"
}

// decide skips only when the stored fingerprint matches and the archive
// object is present. A matching sidecar next to a missing payload is what an
// interrupted run leaves behind, so it must upload again.
func decide(local Fingerprint, remote RemoteUnitState) Decision {
	if remote.StoredFingerprint != nil && *remote.StoredFingerprint == local && remote.ArchiveObjectExists {
		return DecisionSkip
	}
	return DecisionUpload
}
