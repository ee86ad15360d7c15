/*
Package config manages configuration parsing and validation for patchrc.

	            +-------------+
	            |   Config    |
	            | target+rules|
	            +------+------+
	                   |
	      +------------+------------+
	      |            |            |
	+-----+----+ +-----+----+ +-----+----+
	|   YAML   | |   JSON   | |   HCL    |
	|  Parser  | |  Parser  | |  Parser  |
	+----------+ +----------+ +----------+

🎯 Purpose:
- Describes the single file to patch and the ordered correction rules
- Picks a parser from the file extension
- Compiles every pattern up front so a typo fails before any file is touched
- Ships the DMP auto-mesures corrections as the built-in default

🔄 Flow:
1. LoadOrDefault reads the config file, or falls back to Default
2. The registered parser decodes the format
3. Validate checks required fields and compiles patterns
4. AbsentPatterns/PresentPatterns feed the verification step

🔍 Example:

	cfg, err := config.LoadOrDefault(ctx, afero.NewOsFs(), ".patchrc.yaml")
	if err != nil {
		return err
	}
	for _, rule := range cfg.Rules {
		fmt.Println(rule.Description)
	}
*/
package config
