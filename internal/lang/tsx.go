package lang

func init() {
	Register(typescriptSpec(TSX, ".tsx"))
}
