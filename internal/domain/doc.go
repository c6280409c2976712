// Package domain implements the crop yield anomaly emulator: the
// conversion of one pixel's daily climate year into a scalar deviation of
// emulated yield from its historical baseline.
//
// # Model
//
// For every 0.5-degree land pixel and crop, an externally trained
// regression supplies a growing-season calendar (planting day of year,
// season length in days), a selection of five climate indicators out of a
// fixed candidate set of forty, and twenty-one polynomial coefficients.
// Evaluation proceeds in three stages:
//
//  1. The calendar expands into five day-of-year windows: the full season,
//     an 11-day planting window, the stretch before anthesis, an 11-day
//     anthesis window, and the stretch after anthesis. Anthesis (the
//     flowering stage) is approximated as the season midpoint. Windows
//     crossing the year boundary wrap past day 365 back to day 1; the model
//     year is a fixed 365 days with no leap-day handling.
//
//  2. The five selected indicators are computed from the daily maximum
//     temperature, minimum temperature, and precipitation restricted to
//     those windows. The candidate table is eight statistics per window:
//     mean daily temperature ((tasmax+tasmin)/2), mean precipitation,
//     counts of days with tasmax above 30 and 35 degrees C, tasmin below
//     0, precipitation above 10 mm and below 0.01 mm, and the longest
//     consecutive dry spell (precipitation below 0.01 mm). Ids run 1..40
//     in window-major order, so id 3 is the count of season days with
//     tasmax above 30.
//
//  3. The five indicator values feed a fixed-form quadratic polynomial:
//     intercept, five linear terms, ten pairwise products, five squares,
//     with coefficient order pinned by the training procedure.
//
// # Conventions
//
// Day-of-year values are 1-based; arrays are 0-based, so day d reads
// array index d-1. Per-pixel dataset arrays are row-major over the grid
// (latitude index times grid width plus longitude index) with NaN marking
// ocean and no-data cells. Longitudes above 180 are normalized by
// subtracting 180, reproducing the trained emulator's rule exactly.
//
// The package is pure computation plus the [DataSource] interface its
// callers inject; it performs no I/O of its own and keeps no state across
// evaluations, so evaluations are safe to run in parallel across pixels
// and years.
package domain
