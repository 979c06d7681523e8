// Package main - test_runner.go
// Executable to run the Century Run validation suite.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/MVidalUrbina/CiudadGemela/server/test"
)

func main() {
	fmt.Println("🏙️ CIUDAD GEMELA - CENTURY RUN TEST SUITE")
	fmt.Println("=========================================")

	ctx := context.Background()

	fmt.Println("\n🧪 Starting test: The Century Run...")
	centuryTest := test.NewCenturyRunTest()
	centuryTest.RunTest(ctx)

	// Summary
	results := centuryTest.GetResults()
	passed := 0
	failed := 0

	for _, r := range results {
		if r.Passed {
			passed++
			fmt.Printf("   ✅ %s: %s\n", r.CheckName, r.Actual)
		} else {
			failed++
			fmt.Printf("   ❌ %s: expected %s, got %s (%s)\n", r.CheckName, r.Expected, r.Actual, r.Reason)
		}
	}

	fmt.Println("\n" + string(repeatChar('=', 60)))
	fmt.Println("📊 TEST SUMMARY")
	fmt.Println(string(repeatChar('=', 60)))
	fmt.Printf("   ✅ Passed: %d\n", passed)
	fmt.Printf("   ❌ Failed: %d\n", failed)

	if failed > 0 {
		fmt.Println("\n⚠️  The engine needs recalibration")
		os.Exit(1)
	} else {
		fmt.Println("\n✅ The engine is ready for deployment")
		os.Exit(0)
	}
}

func repeatChar(c byte, count int) []byte {
	result := make([]byte, count)
	for i := 0; i < count; i++ {
		result[i] = c
	}
	return result
}
