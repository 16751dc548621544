// Package domain models US wildfire occurrence records and the derived
// per-state aggregates the dashboard renders.
//
// # Data Source
//
// Records come from the Fire Program Analysis Fire-Occurrence Database
// (FPA FOD), 1992–2015, distributed as a SQLite database with a "Fires"
// table. The prune command projects it down to a fixed column set and
// writes a gzip-compressed CSV, which is the only input the dashboard reads.
//
// # Column Contract
//
//	FIRE_YEAR         calendar year of discovery, e.g. 2012
//	DISCOVERY_DOY     day of year of discovery, 1-based, may be fractional
//	STAT_CAUSE_CODE   numeric cause code (1 Lightning … 13 Missing/Undefined)
//	STAT_CAUSE_DESCR  cause label, e.g. "Debris Burning"
//	LONGITUDE         WGS-84 decimal degrees (negative in the US)
//	LATITUDE          WGS-84 decimal degrees
//	FIRE_SIZE         final fire size in acres
//	FIRE_SIZE_CLASS   A (≤0.25 ac) through G (≥5000 ac)
//	STATE             two-letter USPS state code
//	COUNTY            county name or FIPS code, frequently empty
//	Shape             source geometry blob, carried through verbatim
//
// # Calendar Buckets
//
// Discovery dates are stored as day-of-year only. Month buckets are derived
// from cumulative last-day-of-month tables:
//
//	non-leap: 31 59 90 120 151 181 212 243 273 304 334 365
//	leap:     31 60 91 121 152 182 213 244 274 305 335 366
//
// The month is the first boundary ≥ floor(day). By default a year is leap
// when divisible by 4 and not by 100; the /400 exception (which makes 2000 a
// leap year) is only applied under [LeapGregorian]. Days outside 1..365/366
// map to the "unknown" month rather than failing.
//
// # Trend Slopes
//
// A state's trend is the ordinary least squares slope of its yearly fire
// count against year. Positive means more fires per year. States observed in
// fewer than two distinct years have no defined slope; they are reported with
// Defined=false instead of a zero slope.
package domain
