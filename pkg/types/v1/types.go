package v1

type ID string

func (id ID) String() string { return string(id) }

type SyncStatus string

const (
	StatusUninitialized SyncStatus = "uninitialized"
	StatusOK            SyncStatus = "ok"
	StatusOffline       SyncStatus = "offline"
	StatusSynchronizing SyncStatus = "synchronizing"
	StatusError         SyncStatus = "error"
)

type ByID []Note

func (p ByID) Len() int {
	return len(p)
}

func (p ByID) Less(i, j int) bool {
	return p[i].ID < p[j].ID
}

func (p ByID) Swap(i, j int) {
	p[i], p[j] = p[j], p[i]
}
