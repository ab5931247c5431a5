package keeper

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/api3dao/airkeeper/src/utils/config"
)

func writeDocument(t *testing.T, dir string, name string, document interface{}) string {
	content, err := json.Marshal(document)
	require.NoError(t, err)

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, content, 0o600))
	return path
}

func handlerConfig(t *testing.T, airnode interface{}, airkeeper interface{}) *config.Config {
	dir := t.TempDir()

	cfg := config.Default()
	cfg.Keeper.AirnodeConfigPath = writeDocument(t, dir, "airnode.json", airnode)
	cfg.Keeper.AirkeeperConfigPath = writeDocument(t, dir, "airkeeper.json", airkeeper)
	return cfg
}

func validAirnodeDocument() map[string]interface{} {
	return map[string]interface{}{
		"nodeSettings": map[string]interface{}{
			"airnodeWalletMnemonic": testMnemonic,
		},
		"chains": []map[string]interface{}{
			{
				"id":   "31337",
				"type": "evm",
				"providers": map[string]interface{}{
					"local": map[string]interface{}{"url": "http://127.0.0.1:8545"},
				},
			},
		},
	}
}

func TestHandlePspEmptyTriggers(t *testing.T) {
	cfg := handlerConfig(t, validAirnodeDocument(), map[string]interface{}{
		"airnodeAddress": testAirnodeAddress,
	})

	response, err := HandlePsp(context.Background(), cfg, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, 200, response.StatusCode)
	assert.JSONEq(t, `{"ok":true,"data":{"message":"PSP beacon update execution has finished"}}`, response.Body)
}

func TestHandleRrpEmptyTriggers(t *testing.T) {
	cfg := handlerConfig(t, validAirnodeDocument(), map[string]interface{}{
		"airnodeAddress": testAirnodeAddress,
	})

	response, err := HandleRrp(context.Background(), cfg, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, 200, response.StatusCode)
	assert.JSONEq(t, `{"ok":true,"data":{"message":"RRP beacon update execution has finished"}}`, response.Body)
}

func TestHandlePspNullMnemonic(t *testing.T) {
	airnode := validAirnodeDocument()
	airnode["nodeSettings"] = map[string]interface{}{"airnodeWalletMnemonic": nil}

	cfg := handlerConfig(t, airnode, map[string]interface{}{
		"airnodeAddress": testAirnodeAddress,
	})

	_, err := HandlePsp(context.Background(), cfg, nil, nil)
	require.Error(t, err)
	assert.EqualError(t, err, "Invalid Airnode configuration file")
}

func TestHandlePspNullAirnodeAddress(t *testing.T) {
	cfg := handlerConfig(t, validAirnodeDocument(), map[string]interface{}{
		"airnodeAddress": nil,
	})

	_, err := HandlePsp(context.Background(), cfg, nil, nil)
	require.Error(t, err)
	assert.EqualError(t, err, "Invalid Airkeeper configuration file")
}

func TestHandlePspMissingDocument(t *testing.T) {
	cfg := config.Default()
	cfg.Keeper.AirnodeConfigPath = filepath.Join(t.TempDir(), "missing.json")

	_, err := HandlePsp(context.Background(), cfg, nil, nil)
	require.Error(t, err)
	assert.EqualError(t, err, "Invalid Airnode configuration file")
}
