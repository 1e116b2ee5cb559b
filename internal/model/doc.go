// Package model defines the core data types shared across SiteScribe.
//
// The types in this package are plain data carriers with no behavior beyond
// small convenience accessors. They are created by the crawler and consumed
// by the report and database packages, which keeps those packages free of
// dependencies on each other.
package model
