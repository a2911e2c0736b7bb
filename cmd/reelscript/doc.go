// Command reelscript ingests Tamil movie dialogue into the segment catalog.
package main
