// Package finddups provides path expansion, file hashing, and duplicate detection
// for sets of files and directories.
//
// # Core API
//
// Expand the caller's paths into a sorted, duplicate-free file set:
//
//	files := finddups.ExpandPaths([]string{"photos", "backup/img.jpg"}, finddups.ExpandOptions{Recursive: true})
//
// Hash every file and group identical contents:
//
//	detector, err := finddups.NewDetector(finddups.DetectorOptions{Algorithm: "md5"})
//	result, err := detector.Run(ctx, files)
//	for _, group := range result.Groups {
//		fmt.Printf("Hash %s: %v\n", group.Hash, group.Files)
//	}
//
// Files that cannot be read are collected in result.Failures and never stop the
// run. result.ExitStatus() returns 1 when any file failed and 0 otherwise.
//
// # Output
//
// Reporter renders verbose digest lines, failure lines, and duplicate groups in
// the human, fdupes, json, or yaml format.
//
// # Configuration
//
// Options can be loaded from an INI file with LoadConfig and overridden with
// Config.ApplyOverrides. Diagnostic output is controlled with:
//
//	finddups.SetDebugFlags("expand,hash")
//	finddups.SetVerboseLevel(2)
//
// # Note on Internal API
//
// Types like pathSet, hashManager, and runState are internal and should not be
// used directly by external consumers.
package finddups
