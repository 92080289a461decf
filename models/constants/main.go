package constants

/*
	Defines the closed base-level
	enums used throughout the
	browser server and the
	ingestion tooling.
*/
type AncestryGroup string
type SequencingType string
type AssetType string
type InitStrategy string
