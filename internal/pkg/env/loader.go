package env

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/mcvid/mcvid/internal/pkg/utils/errors"
)

// LoadDotEnv loads ENVs from the ".env" file if it exists in the directory.
// Already defined ENVs take precedence.
func LoadDotEnv(osEnvs *Map, dir string) (*Map, error) {
	envs := FromMap(map[string]string{})
	envs.Merge(osEnvs, true)

	path := dir + string(os.PathSeparator) + ".env"
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return envs, nil
		}
		return nil, errors.PrefixErrorf(err, `cannot read env file "%s"`, path)
	}

	fileEnvs, err := LoadEnvString(string(content))
	if err != nil {
		return nil, errors.PrefixErrorf(err, `cannot parse env file "%s"`, path)
	}

	envs.Merge(fileEnvs, false)
	return envs, nil
}

func LoadEnvString(content string) (*Map, error) {
	data, err := godotenv.Unmarshal(content)
	if err != nil {
		return nil, err
	}
	return FromMap(data), nil
}
