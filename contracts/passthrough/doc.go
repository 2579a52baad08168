/*
Package passthrough implements Passthrough contract which gates calls of
external contracts forwarded on behalf of a multisig contract.

Every forwarded call is described by an interaction: a pair of the target
contract and its method name. Interactions are registered and managed by the
multisig contract only, once consensus is reached there. Anyone can ask
whether particular call is allowed via CanExecute method, multisig consults it
before forwarding the call.

Interaction permissions consist of:
  - list of accounts allowed to propose the call, empty list allows anyone;
  - token allowed to be paid along with the call, missing token forbids any
    payments, GAS token also allows plain GAS amounts;
  - enabled/disabled status, new interactions are enabled.

Registered interactions are never removed, allowed accounts are never
removed from the list.

# Contract notifications

InteractionAdded notification. This notification is produced when new
interaction is registered.

	InteractionAdded:
	  - name: target
	    type: Hash160
	  - name: endpoint
	    type: String

InteractionStatusChanged notification. This notification is produced when
interaction is enabled or disabled.

	InteractionStatusChanged:
	  - name: target
	    type: Hash160
	  - name: endpoint
	    type: String
	  - name: enabled
	    type: Boolean

AllowedAddressesAdded notification. This notification is produced when the
list of allowed accounts is extended.

	AllowedAddressesAdded:
	  - name: target
	    type: Hash160
	  - name: endpoint
	    type: String
	  - name: addresses
	    type: Array

AllowedTokenSet notification. This notification is produced when allowed
token is replaced.

	AllowedTokenSet:
	  - name: target
	    type: Hash160
	  - name: endpoint
	    type: String
	  - name: token
	    type: Hash160
*/
package passthrough

/*
Contract storage model.

Current conventions:
 <addr>: 20-byte script hash
 <id>: 4-byte little-endian address ID, IDs start from 1
 <digest>: SHA256 of <id> concatenated with the method name

# Summary
Key-value storage format:
 - 'multisig' -> interop.Hash160
   script hash of the multisig contract
 - 'lastAddressID' -> int
   last allocated address ID
 - 'a' + <addr> -> int
   address ID
 - 'i' + <id> -> interop.Hash160
   address by ID
 - 'r' + <digest> -> std.Serialize(Interaction)
   registered interaction
 - 's' + <digest> -> bool
   interaction status, true if enabled
 - 't' + <digest> -> interop.Hash160
   token allowed to be paid with the interaction
 - 'u' + <digest> + <addr> -> bool
   account allowed to propose the interaction

# Interactions
Contract stores interaction permissions. Address IDs are never reassigned.
*/
