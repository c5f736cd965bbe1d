package e2e_test

import (
	"bytes"
	"fmt"
	"math/rand"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"cloud.google.com/go/datastore/apiv1/datastorepb"
	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protojson"
)

func runCLI(t testing.TB, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := exec.Command("go", append([]string{"run", "../../main.go"}, args...)...)
	cmd.Stdin = strings.NewReader(stdin)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

// TestEndToEnd_ComplexNestedStructures converts a document mixing every value kind
func TestEndToEnd_ComplexNestedStructures(t *testing.T) {
	tempDir := t.TempDir()

	jsonContent := `{
		"id": 12345,
		"uuid": "550e8400-e29b-41d4-a716-446655440000",
		"created_at": "2023-05-20T14:56:23Z",
		"updated_at": null,
		"config": {
			"enabled": true,
			"timeout_seconds": 30,
			"features": ["logging", "metrics", "alerting"],
			"environments": {
				"development": {"debug": true, "log_level": "debug"},
				"production": {"debug": false, "log_level": "info"}
			}
		},
		"users": [
			{"id": 1, "name": "Alice", "roles": ["admin", "user"], "metadata": {"last_login": "2023-05-19T10:30:00Z"}},
			{"id": 2, "name": "Bob", "roles": ["user"], "metadata": {"last_login": "2023-05-18T09:15:00Z"}}
		],
		"stats": {
			"success_rate": 0.9999,
			"response_times": [0.045, 0.067, 0.032, 0.051],
			"matrix": [[1, 2], [3, 4], []]
		},
		"active": true
	}`
	jsonFile := filepath.Join(tempDir, "service_status.json")
	require.NoError(t, os.WriteFile(jsonFile, []byte(jsonContent), 0644))
	outputFile := filepath.Join(tempDir, "out.json")

	_, stderr, err := runCLI(t, "", "-i", jsonFile, "-o", outputFile, "--key-property", "id", "--exclude", "^uuid$")
	require.NoError(t, err, "CLI command failed: %s", stderr)

	data, err := os.ReadFile(outputFile)
	require.NoError(t, err)
	var entity datastorepb.Entity
	require.NoError(t, protojson.Unmarshal(data, &entity))

	key := entity.GetKey().GetPath()[0]
	assert.Equal(t, "ServiceStatus", key.GetKind())
	assert.Equal(t, int64(12345), key.GetId())

	props := entity.GetProperties()
	assert.Len(t, props, 8)
	assert.True(t, props["uuid"].GetExcludeFromIndexes())
	assert.Equal(t, time.Date(2023, 5, 20, 14, 56, 23, 0, time.UTC), props["created_at"].GetTimestampValue().AsTime())

	_, isNull := props["updated_at"].GetValueType().(*datastorepb.Value_NullValue)
	assert.True(t, isNull)

	environments := props["config"].GetEntityValue().GetProperties()["environments"].GetEntityValue()
	assert.False(t, environments.GetProperties()["production"].GetEntityValue().GetProperties()["debug"].GetBooleanValue())

	users := props["users"].GetArrayValue().GetValues()
	require.Len(t, users, 2)
	assert.Equal(t, "Bob", users[1].GetEntityValue().GetProperties()["name"].GetStringValue())

	matrix := props["stats"].GetEntityValue().GetProperties()["matrix"].GetArrayValue().GetValues()
	require.Len(t, matrix, 3)
	assert.Len(t, matrix[1].GetArrayValue().GetValues(), 2)
	assert.Empty(t, matrix[2].GetArrayValue().GetValues())
}

// TestEndToEnd_HeterogeneousArrays checks which mixed arrays are accepted
func TestEndToEnd_HeterogeneousArrays(t *testing.T) {
	t.Run("objects with different fields", func(t *testing.T) {
		input := `{"mixed_objects": [
			{"type": "user", "id": 1, "name": "Alice"},
			{"type": "group", "id": 2, "members": 5}
		]}`
		stdout, stderr, err := runCLI(t, input)
		require.NoError(t, err, "CLI command failed: %s", stderr)

		var entity datastorepb.Entity
		require.NoError(t, protojson.Unmarshal([]byte(stdout), &entity))
		assert.Len(t, entity.GetProperties()["mixed_objects"].GetArrayValue().GetValues(), 2)
	})

	t.Run("scalars of different kinds", func(t *testing.T) {
		_, stderr, err := runCLI(t, `{"mixed": [1, "string", true, null]}`)
		require.NoError(t, err, "CLI command failed: %s", stderr)

		_, stderr, err = runCLI(t, `{"mixed": [1, "string", true, null]}`, "--strict-arrays")
		assert.Error(t, err)
		assert.Contains(t, stderr, "mixed")
	})

	t.Run("objects mixed with scalars", func(t *testing.T) {
		_, stderr, err := runCLI(t, `{"mixed_array": [{"nested": "object"}, 1, [1, 2, 3]]}`)
		assert.Error(t, err)
		assert.Contains(t, stderr, "mixed_array")
	})
}

// generateLargeJSON writes an array of itemCount objects to filePath
func generateLargeJSON(t testing.TB, filePath string, itemCount int) {
	rng := rand.New(rand.NewSource(42))

	items := make([]map[string]interface{}, itemCount)
	for i := 0; i < itemCount; i++ {
		items[i] = map[string]interface{}{
			"id":          i + 1,
			"name":        fmt.Sprintf("Item %d", i+1),
			"description": fmt.Sprintf("This is item number %d in the test dataset", i+1),
			"created_at":  time.Now().Add(-time.Duration(rng.Intn(10000)) * time.Hour).Format(time.RFC3339),
			"price":       rng.Float64() * 1000,
			"quantity":    rng.Intn(100),
			"active":      rng.Intn(2) == 1,
			"tags":        []string{"tag1", "tag2", "tag3"}[0 : rng.Intn(3)+1],
			"metadata": map[string]interface{}{
				"source":   "test",
				"priority": rng.Intn(5) + 1,
				"score":    rng.Float64(),
			},
		}
	}

	jsonData, err := json.MarshalIndent(items, "", "  ")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filePath, jsonData, 0644))
}

func TestEndToEnd_ArrayRootCommit(t *testing.T) {
	tempDir := t.TempDir()
	jsonFile := filepath.Join(tempDir, "inventory.json")
	generateLargeJSON(t, jsonFile, 50)

	stdout, stderr, err := runCLI(t, "", "-i", jsonFile, "--commit", "--operation", "insert",
		"--key-property", "id", "--project", "p", "--database", "d")
	require.NoError(t, err, "CLI command failed: %s", stderr)

	var req datastorepb.CommitRequest
	require.NoError(t, protojson.Unmarshal([]byte(stdout), &req))
	assert.Equal(t, "d", req.GetDatabaseId())
	require.Len(t, req.GetMutations(), 50)
	for i, m := range req.GetMutations() {
		key := m.GetInsert().GetKey()
		assert.Equal(t, int64(i+1), key.GetPath()[0].GetId())
		assert.Equal(t, "Inventory", key.GetPath()[0].GetKind())
		assert.Equal(t, "d", key.GetPartitionId().GetDatabaseId())
	}
}

// TestEndToEnd_EdgeCases tests various edge cases
func TestEndToEnd_EdgeCases(t *testing.T) {
	testCases := []struct {
		name     string
		json     string
		expected string
		isError  bool
	}{
		{name: "EmptyObject", json: `{}`, expected: `"key"`},
		{name: "EmptyArray", json: `[]`, expected: "[]"},
		{name: "SingleValue", json: `"just a string"`, expected: "cannot convert", isError: true},
		{name: "SingleNumber", json: `42`, expected: "cannot convert", isError: true},
		{name: "SingleNull", json: `null`, expected: "cannot convert", isError: true},
		{name: "InvalidJSON", json: `{"name": "Invalid JSON",}`, isError: true},
		{name: "DeeplyNestedObject", json: `{"level1":{"level2":{"level3":{"level4":{"value":42}}}}}`, expected: `"entity_value"`},
		{name: "DeeplyNestedArray", json: `{"a": [[[[[42]]]]]}`, expected: `"array_value"`},
		{name: "ArrayOfScalarsAtRoot", json: `[[42]]`, expected: "not an object", isError: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			stdout, stderr, err := runCLI(t, tc.json)
			if tc.isError {
				assert.Error(t, err)
				assert.Contains(t, stderr, tc.expected)
				return
			}
			require.NoError(t, err, "CLI command failed: %s", stderr)
			assert.Contains(t, stdout, tc.expected)
		})
	}
}
