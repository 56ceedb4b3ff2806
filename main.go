// Command csvwizard uploads CSV files to a processing backend step by step.
//
// Usage:
//
//	csvwizard steps
//	csvwizard run --file <step-id>=<path> [--file ...] [--consolidate]
//	csvwizard headers <file>
//	csvwizard map <file> [--assign <csv-column>=<standard-column>] [--interactive]
//	csvwizard serve [--addr :8090]
package main

import "csvwizard/internal/cli"

func main() {
	cli.Execute()
}
