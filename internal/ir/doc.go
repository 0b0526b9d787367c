// Package ir holds the canonical value model used for content-addressed
// identity and golden snapshots.
//
// Values are restricted to strings, integers, booleans, arrays and objects.
// There are no floats and no nulls, so canonical encoding is total and
// byte-stable across runs and platforms.
//
// ir imports nothing internal; every other package may import it.
package ir
