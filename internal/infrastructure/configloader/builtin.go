package configloader

// builtinConfig is the project's Hardhat deploy settings: a local dev chain
// funded from a mnemonic and the two public Celo networks signing with
// PRIVATE_KEY. The compiler is declared twice, as in the Hardhat file.
const builtinConfig = `solidity: "0.8.17"
networks:
  localhost:
    url: "http://127.0.0.1:8545"
    accounts:
      mnemonic: "${DEVCHAIN_MNEMONIC}"
  alfajores:
    url: "https://alfajores-forno.celo-testnet.org"
    accounts:
      - "${PRIVATE_KEY}"
    chainId: 44787
  celo:
    url: "https://forno.celo.org"
    accounts:
      - "${PRIVATE_KEY}"
    chainId: 42220
solidity:
  version: "0.8.9"
  settings:
    optimizer:
      enabled: true
      runs: 200
`

// BuiltinSource is the Document.Source value of the built-in config.
const BuiltinSource = "builtin"

// Builtin returns the built-in document.
func Builtin() *Document {
	doc, err := Parse([]byte(builtinConfig))
	if err != nil {
		panic("builtin deploy config does not parse: " + err.Error())
	}
	doc.Source = BuiltinSource
	return doc
}

// BuiltinYAML returns the raw built-in document, e.g. for `init`.
func BuiltinYAML() []byte {
	return []byte(builtinConfig)
}
