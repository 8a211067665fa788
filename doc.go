// Package dirverify verifies claimed identities against an LDAP-compatible
// directory service.
//
// The package covers two operations:
//   - credential authentication: prove a username/password pair is valid by
//     resolving the account's distinguished name and re-binding with the
//     supplied password
//   - record resolution: locate an employee's profile from partial
//     identifying fields (email, user id, display name) and normalize it
//     into a fixed canonical shape, tolerating schema differences between
//     directory vendors
//
// Every verification call owns exactly one directory session for its
// duration. Sessions are never pooled or shared: bind state is
// principal-specific and must not leak between callers.
//
// # Basic Usage
//
//	client, err := dirverify.NewClient(&dirverify.Config{
//		ServerURL:       "ldaps://ldap.example.com:636",
//		BaseDN:          "dc=example,dc=com",
//		ServiceDN:       "cn=svc-verify,ou=services,dc=example,dc=com",
//		ServicePassword: os.Getenv("SERVICE_PASSWORD"),
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	svc := dirverify.NewService(client)
//
//	res := svc.Authenticate(ctx, "jdoe", password)
//	if res.Verified {
//		fmt.Println("authenticated:", res.Profile.Name)
//	}
//
//	res = svc.ResolveProfile(ctx, dirverify.Inputs{Email: "jdoe@example.com"})
//
// Authentication failures and unknown accounts deliberately share one
// generic reason string so callers cannot be used as a username oracle.
// Infrastructure failures (directory unreachable, service bind rejected)
// surface with a distinguishable reason instead.
package dirverify
