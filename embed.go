package blogfront

import "embed"

// EmbeddedAssets contains static assets shipped with the binary:
// styles.css, header.js, track.js, gtag.js and favicon.svg.
//
//go:embed embedded/*
var EmbeddedAssets embed.FS
