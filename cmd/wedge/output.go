package main

import (
	"encoding/json"
	"fmt"
)

func writeJSONOutput(output any, exitCode int) int {
	encoded, err := json.Marshal(output)
	if err != nil {
		fmt.Println(`{"ok":false,"error":"failed to encode output"}`)
		return exitInternalFailure
	}
	fmt.Println(string(encoded))
	return exitCode
}
