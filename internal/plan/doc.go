// Package plan builds read-only previews of photo and video runs: which
// inputs a real run would process or skip via the score cache, and which
// output paths it would produce.
package plan
