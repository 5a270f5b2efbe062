package main

import (
	"golang.org/x/tools/go/analysis/singlechecker"

	"github.com/rezkam/taskflow/tools/linters/localtime"
)

func main() {
	singlechecker.Main(localtime.Analyzer)
}
