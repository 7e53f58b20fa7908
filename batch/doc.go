// Package batch turns replicate tables into curves and analyses them
// concurrently.
//
// ReadRows reads the positional CSV layout: experiment, cell line, drug,
// concentration, then replicate columns. Aggregate converts ratios to percent
// and viability to inhibition, reduces the replicates of each row (optionally
// trimming IQR outliers) and groups rows into curves by experiment, cell line
// and drug. Runner analyses the curves on a github.com/alitto/pond/v2 worker
// pool; a curve with invalid data or a diverging fit is skipped and reported
// instead of aborting the run.
package batch
