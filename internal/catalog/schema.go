package catalog

import "github.com/invopop/jsonschema"

// Schema describes the catalog document for editor tooling and validation.
func Schema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
	}
	schema := reflector.Reflect(new(Document))
	schema.Title = "Boss Fight Stage Catalog"
	schema.Description = "Roster of bosses the game cycles through, validated by BOSSFIGHT_CATALOG_FILE loading."
	return schema
}
