// Package du reads and writes disk-usage reports in the format printed by
// "du -ab": one entry per line, a byte count, a tab, and a path.
//
//	4096	/home/alice
//	1536	/home/alice/notes.txt
//
// [Parse] and [ReadFile] turn such a report into [item.Entry] values ready
// for [item.Build]. [Scan] produces the same entries from a live directory
// tree without shelling out to du, and [Write] prints entries back in du
// form.
package du
