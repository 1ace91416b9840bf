package cache

var EscapeGlob = escapeGlob
