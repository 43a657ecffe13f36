/*
Package config builds the immutable startup configuration for copywatch.

	            +-------------+
	            |   Config    |
	            | (immutable) |
	            +------+------+
	                   |
	      +------------+------------+
	      |                         |
	+-----+-----+           +-------+-------+
	|    Env    |  wins     |  Config file  |
	| SOURCE_DIR|  over     | json/yaml/hcl |
	+-----------+           +---------------+

🎯 Purpose:
- Reads SOURCE_DIR, TARGET_DIR, RECORD_FILE, LOG_FILE and friends
- Optionally layers them over a config file
- Validates once, before any filesystem work starts

🔄 Flow:
1. Parse the config file, if one was given
2. Apply non-empty environment variables on top
3. Fill defaults (transfers.json, 100ms settle delay, info level)
4. Validate and hand a *Config to the caller

A validation failure is always an *Error, so callers can tell bad
configuration apart from I/O trouble:

	cfg, err := config.Load(ctx, "", os.LookupEnv)
	if err != nil {
		var cerr *config.Error
		if errors.As(err, &cerr) {
			fmt.Println("fix your environment:", cerr)
		}
		return err
	}
*/
package config
