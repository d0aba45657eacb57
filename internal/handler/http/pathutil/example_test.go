package pathutil_test

import (
	"fmt"

	"healthquiz/internal/handler/http/pathutil"
)

func ExampleNormalizePath() {
	fmt.Println(pathutil.NormalizePath("/admin/questions/3f2b6a8e-3c1d-4b7a-9a55-0d1f6f0f9c11/archive"))
	fmt.Println(pathutil.NormalizePath("/admin/questions/0b5e1c4d-9f9e-4c11-8a21-7f0c3a3e2b10/restore"))
	fmt.Println(pathutil.NormalizePath("/quiz/respond"))

	// Output:
	// /admin/questions/:id/archive
	// /admin/questions/:id/restore
	// /quiz/respond
}
