package hubfast

// ShardInfo is one entry from the dataset tree listing.
type ShardInfo struct {
	Type string `json:"type"`
	Path string `json:"path"`
	Size int64  `json:"size"`
}

// Row is one dataset row as returned by the rows endpoint: an index within
// the shard plus the raw column → value bag.
type Row struct {
	Idx    int            `json:"row_idx"`
	Fields map[string]any `json:"row"`
}

// RowsPage is one bounded slice of a shard.
type RowsPage struct {
	Rows         []Row `json:"rows"`
	NumRowsTotal int   `json:"num_rows_total"`
}
