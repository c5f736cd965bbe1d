package cli_test

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"cloud.google.com/go/datastore/apiv1/datastorepb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protojson"
	"gopkg.in/yaml.v3"
)

func runCLI(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := exec.Command("go", append([]string{"run", "../../main.go"}, args...)...)
	cmd.Stdin = strings.NewReader(stdin)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

// TestCLI_FileInputOutput tests the CLI with file input and output
func TestCLI_FileInputOutput(t *testing.T) {
	tempDir := t.TempDir()

	jsonContent := `{
		"name": "John Doe",
		"age": 30,
		"address": {
			"street": "123 Main St",
			"city": "Anytown"
		},
		"phones": [
			{"type": "home", "number": "555-1234"},
			{"type": "work", "number": "555-5678"}
		],
		"active": true
	}`
	jsonFile := filepath.Join(tempDir, "contact_card.json")
	require.NoError(t, os.WriteFile(jsonFile, []byte(jsonContent), 0644))

	outputFile := filepath.Join(tempDir, "output.json")

	_, stderr, err := runCLI(t, "", "-i", jsonFile, "-o", outputFile, "--namespace", "crm")
	require.NoError(t, err, "CLI command failed: %s", stderr)

	data, err := os.ReadFile(outputFile)
	require.NoError(t, err)

	var entity datastorepb.Entity
	require.NoError(t, protojson.Unmarshal(data, &entity))

	assert.Equal(t, "ContactCard", entity.GetKey().GetPath()[0].GetKind())
	assert.Equal(t, "crm", entity.GetKey().GetPartitionId().GetNamespaceId())

	props := entity.GetProperties()
	assert.Equal(t, "John Doe", props["name"].GetStringValue())
	assert.Equal(t, int64(30), props["age"].GetIntegerValue())
	assert.Equal(t, "Anytown", props["address"].GetEntityValue().GetProperties()["city"].GetStringValue())

	phones := props["phones"].GetArrayValue().GetValues()
	require.Len(t, phones, 2)
	assert.Equal(t, "work", phones[1].GetEntityValue().GetProperties()["type"].GetStringValue())
}

// TestCLI_StdinStdout tests the CLI with stdin input and stdout output
func TestCLI_StdinStdout(t *testing.T) {
	stdout, stderr, err := runCLI(t, `{"name": "Jane Smith", "age": 25, "active": true}`, "--kind", "Person")
	require.NoError(t, err, "CLI command failed: %s", stderr)

	var entity datastorepb.Entity
	require.NoError(t, protojson.Unmarshal([]byte(stdout), &entity))
	assert.Equal(t, "Person", entity.GetKey().GetPath()[0].GetKind())
	assert.Equal(t, int64(25), entity.GetProperties()["age"].GetIntegerValue())
}

func TestCLI_ArrayInputCommit(t *testing.T) {
	input := `[{"sku": "a-1", "qty": 1}, {"sku": "b-2", "qty": 5}]`

	stdout, stderr, err := runCLI(t, input,
		"--commit", "--project", "shop", "--key-property", "sku", "--kind", "Item", "-f", "yaml")
	require.NoError(t, err, "CLI command failed: %s", stderr)

	var decoded map[string]interface{}
	require.NoError(t, yaml.Unmarshal([]byte(stdout), &decoded))
	assert.Equal(t, "shop", decoded["project_id"])
	mutations, ok := decoded["mutations"].([]interface{})
	require.True(t, ok)
	assert.Len(t, mutations, 2)
}

func TestCLI_TextFormat(t *testing.T) {
	stdout, stderr, err := runCLI(t, `{"a": [[1, 2], [3]]}`, "-f", "text")
	require.NoError(t, err, "CLI command failed: %s", stderr)
	assert.Contains(t, stdout, "array_value")
	assert.Contains(t, stdout, "integer_value")
}

func TestCLI_MixedArray(t *testing.T) {
	_, stderr, err := runCLI(t, `{"items": [{"a": 1}, "b"]}`)
	assert.Error(t, err)
	assert.Contains(t, stderr, "Conversion error")
	assert.Contains(t, stderr, "items")
}

func TestCLI_EmptyArrayError(t *testing.T) {
	_, stderr, err := runCLI(t, `{"tags": []}`, "--empty-arrays", "error")
	assert.Error(t, err)
	assert.Contains(t, stderr, "empty array")
}

func TestCLI_InvalidJSON(t *testing.T) {
	_, stderr, err := runCLI(t, `{"name": "Invalid JSON", "missing": }`)
	assert.Error(t, err)
	assert.Contains(t, stderr, "JSON parsing error")
}

func TestCLI_EmptyInput(t *testing.T) {
	_, stderr, err := runCLI(t, "")
	assert.Error(t, err)
	assert.Contains(t, stderr, "empty")
}

func TestCLI_InvalidFormat(t *testing.T) {
	_, stderr, err := runCLI(t, `{"a": 1}`, "-f", "xml")
	assert.Error(t, err)
	assert.Contains(t, stderr, "Configuration error")
}

func TestCLI_Version(t *testing.T) {
	stdout, _, err := runCLI(t, "", "-v")
	require.NoError(t, err)
	assert.Contains(t, stdout, "jentity version")
}

func TestCLI_Help(t *testing.T) {
	stdout, _, err := runCLI(t, "", "--help")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Usage:")
	assert.Contains(t, stdout, "--key-property")
	assert.Contains(t, stdout, "--strict-arrays")
}
