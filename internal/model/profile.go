package model

// Track is one scoring perspective within a profile: a key used to label
// results and the reference text (a resume) jobs are scored against.
type Track struct {
	Key       string
	Reference string
}
