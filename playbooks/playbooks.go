// Package playbooks bundles the stock playbook templates. Importing it
// registers them as the "isna" template package, which the default
// configuration searches under playbook_templates.
package playbooks

import (
	"embed"

	"github.com/arthur-debert/isna/pkg/templates"
)

// PackageName is the template package the bundled templates register as.
const PackageName = "isna"

//go:embed playbook_templates
var FS embed.FS

func init() {
	templates.RegisterPackage(PackageName, FS)
}
